package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/config"
	"tumundo_admin/internal/cuentas"
	"tumundo_admin/internal/facturacion"
	"tumundo_admin/internal/homecfg"
	"tumundo_admin/internal/inventario"
	"tumundo_admin/internal/logistica"
	"tumundo_admin/internal/metodospago"
	"tumundo_admin/internal/pedidos"
	"tumundo_admin/internal/usuarios"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const appName = "tumundo-admin"

var errUsage = errors.New("uso incorrecto")

type Deps struct {
	fx.In

	Config      config.Config
	Logger      *zap.Logger
	API         *api.Client
	Pedidos     *pedidos.Client
	Inventario  *inventario.Client
	Facturacion *facturacion.Service
	Metodos     *metodospago.Client
	Cuentas     *cuentas.Client
	Proveedores *cuentas.Proveedores
	Logistica   *logistica.Service
	Usuarios    *usuarios.Client
	Home        *homecfg.Service
}

type Runner struct {
	options Options
	deps    Deps
	logger  *zap.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	commands map[string]command
}

type command struct {
	summary string
	run     func(ctx context.Context, args []string) error
}

func NewRunner(deps Deps) *Runner {
	r := &Runner{
		options: Options{
			Timeout:   deps.Config.Timeout,
			ExportDir: deps.Config.ExportDir,
		},
		deps:   deps,
		logger: deps.Logger.Named("cli"),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	r.commands = map[string]command{
		"token":       {"guardar, ver o borrar el token de acceso", r.cmdToken},
		"metodos":     {"metodos de pago, depositos, transferencias e historial", r.cmdMetodos},
		"cuentas":     {"cuentas por pagar y abonos", r.cmdCuentas},
		"proveedores": {"libreta local de proveedores", r.cmdProveedores},
		"facturacion": {"pedidos listos, facturar y cargar existencias", r.cmdFacturacion},
		"inventario":  {"inventario, Excel, ajustes y transferencias", r.cmdInventario},
		"pedidos":     {"consulta de pedidos y asignaciones", r.cmdPedidos},
		"logistica":   {"panel de control logistico", r.cmdLogistica},
		"usuarios":    {"permisos y contraseñas", r.cmdUsuarios},
		"home":        {"configuracion de la pagina de inicio", r.cmdHome},
	}
	return r
}

func (r *Runner) Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return r.Run(ctx, os.Args[1:])
}

// Run parses the global flags and runs one command, or the interactive
// shell when no command is given.
func (r *Runner) Run(ctx context.Context, args []string) error {
	var timeoutSeconds int

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(r.errOut)
	fs.Usage = r.usage(fs)
	fs.BoolVar(&r.options.JSON, "json", r.options.JSON, "Salida en formato JSON")
	fs.IntVar(&timeoutSeconds, "timeout", int(r.options.Timeout.Seconds()), "Tiempo maximo por comando en segundos")
	fs.StringVar(&r.options.ExportDir, "export-dir", r.options.ExportDir, "Directorio para archivos exportados")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if timeoutSeconds > 0 {
		r.options.Timeout = time.Duration(timeoutSeconds) * time.Second
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return r.runREPL(ctx)
	}
	return r.dispatch(ctx, rest)
}

func (r *Runner) usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(r.errOut, "Uso: %s [flags] <comando> <accion> [opciones]\n\nComandos:\n", appName)
		names := make([]string, 0, len(r.commands))
		for name := range r.commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(r.errOut, "  %-12s %s\n", name, r.commands[name].summary)
		}
		fmt.Fprintln(r.errOut, "\nFlags:")
		fs.PrintDefaults()
	}
}

func (r *Runner) dispatch(ctx context.Context, args []string) error {
	cmd, ok := r.commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: comando desconocido %q", errUsage, args[0])
	}

	if r.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.options.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := cmd.run(ctx, args[1:])
	r.logger.Info("command",
		zap.Strings("args", args),
		zap.Int64("ms", time.Since(start).Milliseconds()),
		zap.Bool("ok", err == nil),
		zap.Error(err),
	)
	return err
}

func (r *Runner) runREPL(ctx context.Context) error {
	reader := bufio.NewScanner(r.in)
	fmt.Fprintf(r.out, "%s (escriba 'ayuda' o 'salir')\n", appName)

	for {
		fmt.Fprint(r.out, "> ")
		if !reader.Scan() {
			return reader.Err()
		}

		line := strings.TrimSpace(reader.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "salir", "exit", "quit":
			return nil
		case "ayuda", "help":
			r.usage(flag.NewFlagSet(appName, flag.ContinueOnError))()
			continue
		}

		args, err := splitArgs(line)
		if err == nil {
			err = r.dispatch(ctx, args)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(r.errOut, Friendly(err))
		}
	}
}

// subcommand pops the action name off args.
func subcommand(args []string, actions ...string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: indique una accion (%s)", errUsage, strings.Join(actions, ", "))
	}
	for _, a := range actions {
		if a == args[0] {
			return a, args[1:], nil
		}
	}
	return "", nil, fmt.Errorf("%w: accion desconocida %q, use %s", errUsage, args[0], strings.Join(actions, ", "))
}

func (r *Runner) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.errOut)
	return fs
}
