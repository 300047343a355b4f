package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"tumundo_admin/internal/api"

	"github.com/shopspring/decimal"
)

// emit writes v as JSON when --json is set, otherwise calls human.
func (r *Runner) emit(v any, human func()) error {
	if r.options.JSON {
		return json.NewEncoder(r.out).Encode(v)
	}
	human()
	return nil
}

func (r *Runner) table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "- (sin resultados)")
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func (r *Runner) println(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Runner) warn(msgs ...string) {
	for _, msg := range msgs {
		if strings.TrimSpace(msg) != "" {
			fmt.Fprintf(r.errOut, "Advertencia: %s\n", msg)
		}
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func fecha(f api.Fecha) string {
	if f.IsZero() {
		return "-"
	}
	return f.Local().Format("2006-01-02")
}

// exportPath resolves name inside the export directory unless it is
// already a path, creating the directory.
func (r *Runner) exportPath(name string) (string, error) {
	path := name
	if !strings.ContainsRune(name, os.PathSeparator) && r.options.ExportDir != "" {
		path = filepath.Join(r.options.ExportDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de exportacion: %w", err)
	}
	return path, nil
}

// writeFile creates path and hands it to write.
func (r *Runner) writeFile(name string, write func(f *os.File) error) (string, error) {
	path, err := r.exportPath(name)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
