// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report saves replacement results to disk, prints the search trace
// for people, and reads parameter lists for the ranking command.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/partswap/pkg/types"
)

// isJSON reports whether path should be written as JSON rather than YAML.
func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// WriteResult saves res to path, as JSON for a .json extension and as YAML
// otherwise.
func WriteResult(path string, res *types.ReplacementResult) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(res, "", "  ")
	} else {
		data, err = yaml.Marshal(res)
	}
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResult loads a result saved by WriteResult.
func ReadResult(path string) (*types.ReplacementResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var res types.ReplacementResult
	if isJSON(path) {
		err = json.Unmarshal(data, &res)
	} else {
		err = yaml.Unmarshal(data, &res)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &res, nil
}

// PrintTrace writes the per-attempt search trace and the top products.
func PrintTrace(w io.Writer, res *types.ReplacementResult, top int) {
	fmt.Fprintf(w, "%s: status=%s results=%d family_mode=%s\n",
		res.PartNumber, res.Status, len(res.Products), res.FamilyMode)
	if res.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", res.Error)
	}
	if res.Note != "" {
		fmt.Fprintf(w, "  note: %s\n", res.Note)
	}
	if res.BaseKeywords != "" {
		fmt.Fprintf(w, "  base keywords: %s\n", res.BaseKeywords)
	}
	if len(res.BaseTokens) > 0 {
		fmt.Fprintf(w, "  base tokens: %s\n", strings.Join(res.BaseTokens, ", "))
	}

	for _, it := range res.Iterations {
		line := fmt.Sprintf("  try %d: used=%d dropped=%d -> results=%d", it.Ordinal, it.UsedCount, it.DroppedCount, it.ResultCount)
		if it.Tier != "" {
			line += " via " + it.Tier
		}
		if it.Degraded {
			line += " (catalog errors)"
		}
		fmt.Fprintln(w, line)
	}
	if len(res.DroppedParameters) > 0 {
		fmt.Fprintln(w, "  dropped:")
		for _, p := range res.DroppedParameters {
			fmt.Fprintf(w, "    - %s\n", p)
		}
	}

	for i, p := range res.Products {
		if top > 0 && i >= top {
			fmt.Fprintf(w, "  ... %d more\n", len(res.Products)-top)
			break
		}
		fmt.Fprintf(w, "  - %s by %s", p.PartNumber, p.Manufacturer)
		if p.ProductURL != "" {
			fmt.Fprintf(w, " -> %s", p.ProductURL)
		}
		fmt.Fprintln(w)
	}
}

// ParamsFile is a parameter list with optional subject context, as read by
// the rank command.
type ParamsFile struct {
	Params   []types.Parameter
	MPN      string
	Category string
}

// paramRow accepts ids and values as strings or numbers.
type paramRow struct {
	ID      any    `yaml:"id"`
	Name    string `yaml:"name"`
	Value   any    `yaml:"value"`
	ValueID any    `yaml:"value_id"`
}

type paramsDoc struct {
	Params   []paramRow `yaml:"params"`
	MPN      string     `yaml:"mpn"`
	Category string     `yaml:"category"`
}

// ParseParams decodes either a bare list of {id, name, value} rows or an
// object {params, mpn, category}. JSON and YAML are both accepted.
func ParseParams(data []byte) (*ParamsFile, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing params: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, errors.New("params input is empty")
	}

	root := node.Content[0]
	var doc paramsDoc
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&doc.Params); err != nil {
			return nil, fmt.Errorf("parsing params list: %w", err)
		}
	case yaml.MappingNode:
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing params object: %w", err)
		}
		if doc.Params == nil {
			return nil, errors.New("params object has no params key")
		}
	default:
		return nil, errors.New("params must be a list or an object with a params key")
	}

	pf := &ParamsFile{MPN: doc.MPN, Category: doc.Category}
	for _, r := range doc.Params {
		pf.Params = append(pf.Params, types.Parameter{
			ID:      scalar(r.ID),
			Name:    strings.TrimSpace(r.Name),
			Value:   scalar(r.Value),
			ValueID: scalar(r.ValueID),
		})
	}
	return pf, nil
}

// ReadParamsFile loads a params file from disk.
func ReadParamsFile(path string) (*ParamsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading params file: %w", err)
	}
	return ParseParams(data)
}

func scalar(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
