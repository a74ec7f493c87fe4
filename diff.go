package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/nconklindev/bomdiff/internal/logging"
	"github.com/nconklindev/bomdiff/internal/session"
	"github.com/nconklindev/bomdiff/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type diffFlags struct {
	left, right           string
	leftSheet, rightSheet string
	leftKey, rightKey     string
	leftFields            []string
	rightFields           []string
	mappings              []string
	expand                []string
	jsonOut               bool
}

// Output is the machine-readable summary printed with --json.
type Output struct {
	Success    bool   `json:"success"`
	OutputFile string `json:"output_file,omitempty"`
	Rows       int    `json:"rows"`
	Total      int    `json:"total"`
	Duration   string `json:"duration"`
	Error      string `json:"error,omitempty"`
}

func newDiffCmd() *cobra.Command {
	var f diffFlags

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare two workbooks without the interactive UI",
		Example: `  bomdiff diff --left old.xlsx --right new.xlsx --left-key "Part Number"
  bomdiff diff --left a.xlsx --right b.xlsx --left-key PN --right-key PartNo \
      --map Qty=Quantity --expand Left.RefDes --out changes.xlsx --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			out, err := runDiff(cmd, f)
			out.Duration = time.Since(start).String()

			if f.jsonOut {
				if err != nil {
					out.Error = err.Error()
					cmd.SilenceErrors = true
				}
				if encErr := emitJSON(cmd.OutOrStdout(), out); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows changed, written to %s (%s)\n",
				out.Rows, out.Total, out.OutputFile, out.Duration)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.left, "left", "", "Left (reference) workbook")
	fl.StringVar(&f.right, "right", "", "Right (compared) workbook")
	fl.StringVar(&f.leftSheet, "left-sheet", "", "Left sheet name (default: first sheet)")
	fl.StringVar(&f.rightSheet, "right-sheet", "", "Right sheet name (default: first sheet)")
	fl.StringVar(&f.leftKey, "left-key", "", "Left key field")
	fl.StringVar(&f.rightKey, "right-key", "", "Right key field (default: the Left key when present)")
	fl.StringSliceVar(&f.leftFields, "left-fields", nil, "Left fields to compare (default: all)")
	fl.StringSliceVar(&f.rightFields, "right-fields", nil, "Right fields to compare (default: all)")
	fl.StringArrayVar(&f.mappings, "map", nil, "map a Left field to a Right field, LEFT=RIGHT (repeatable)")
	fl.StringArrayVar(&f.expand, "expand", nil, "merged column whose designator ranges are expanded, e.g. Left.RefDes (max 2)")
	fl.BoolVar(&f.jsonOut, "json", false, "print a JSON summary")

	_ = cmd.MarkFlagRequired("left")
	_ = cmd.MarkFlagRequired("right")

	return cmd
}

func runDiff(cmd *cobra.Command, f diffFlags) (Output, error) {
	out := Output{}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return out, err
	}

	logger, err := logging.New(logOptions(cfg))
	if err != nil {
		return out, err
	}
	defer func() { _ = logger.Sync() }()

	s := session.New(logger, sessionOptions(cfg))

	if err := loadSide(s, session.Left, f.left, f.leftSheet); err != nil {
		return out, err
	}
	if err := loadSide(s, session.Right, f.right, f.rightSheet); err != nil {
		return out, err
	}

	rightKey := f.rightKey
	if rightKey == "" && s.Side(session.Right).Loaded() && slices.Contains(s.Side(session.Right).Table.Fields, f.leftKey) {
		rightKey = f.leftKey
	}
	if err := configureSide(s, session.Left, f.leftKey, f.leftFields, logger); err != nil {
		return out, err
	}
	if err := configureSide(s, session.Right, rightKey, f.rightFields, logger); err != nil {
		return out, err
	}

	for _, m := range f.mappings {
		left, right, ok := strings.Cut(m, "=")
		if !ok || left == "" || right == "" {
			return out, fmt.Errorf("invalid mapping %q, want LEFT=RIGHT", m)
		}
		if err := s.SetMapping(left, right); err != nil {
			return out, fmt.Errorf("mapping %q: %w", m, err)
		}
	}

	if err := s.SetExpandColumns(f.expand...); err != nil {
		return out, err
	}

	res, err := s.Merge()
	if err != nil {
		return out, err
	}
	out.Total = res.Total

	sheet, err := s.ExportFile(cfg.OutputPath)
	if err != nil {
		return out, err
	}

	out.Success = true
	out.OutputFile = cfg.OutputPath
	out.Rows = len(sheet.Rows)
	return out, nil
}

// loadSide reads a workbook and parses one of its sheets. Unreadable workbooks
// leave the side empty rather than failing the run.
func loadSide(s *session.Session, id session.SideID, path, sheetName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s workbook: %w", id, err)
	}

	var perr *types.ParseError
	if err := s.LoadFile(id, path, data); err != nil {
		if errors.As(err, &perr) {
			return nil
		}
		return err
	}

	sheets := s.Side(id).Sheets
	switch {
	case sheetName == "" && len(sheets) > 0:
		sheetName = sheets[0]
	case !slices.Contains(sheets, sheetName):
		return fmt.Errorf("sheet %q not found in %s", sheetName, path)
	}

	if err := s.SelectSheet(id, sheetName); err != nil && !errors.As(err, &perr) {
		return err
	}
	return nil
}

// configureSide applies field and key selections. A side without fields is
// compared as an empty table.
func configureSide(s *session.Session, id session.SideID, key string, fields []string, logger *zap.Logger) error {
	side := s.Side(id)
	if !side.Loaded() || len(side.Table.Fields) == 0 {
		logger.Warn("side has no fields, comparing against an empty table", zap.Stringer("side", id))
		return nil
	}

	if len(fields) == 0 {
		s.SelectAllFields(id)
	}
	for _, field := range fields {
		if err := s.ToggleField(id, field); err != nil {
			return fmt.Errorf("%s fields: %w", id, err)
		}
	}

	if key != "" {
		if err := s.SetKey(id, key); err != nil {
			return fmt.Errorf("%s key: %w", id, err)
		}
	}
	return nil
}

func emitJSON(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
