package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/proposals/internal/core"
)

// formFile is the YAML description of one form.
type formFile struct {
	District   string        `yaml:"district"`
	Division   string        `yaml:"dn"`
	GN         string        `yaml:"gn"`
	Attachment string        `yaml:"attachment"`
	Projects   []projectFile `yaml:"projects"`
}

type projectFile struct {
	Proposal      string `yaml:"proposal"`
	EstimatedCost string `yaml:"estimatedCost"`
	Approach      string `yaml:"approach"`
	SDGGoals      string `yaml:"sdgGoals"`
	FundingSource string `yaml:"fundingSource"`
	Name          string `yaml:"name"`
	Institution   string `yaml:"institution"`
}

// errRejected wraps an input the form refused while replaying.
var errRejected = errors.New("input rejected")

func readFormFile(path string) (formFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return formFile{}, fmt.Errorf("read form file: %w", err)
	}
	var f formFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return formFile{}, fmt.Errorf("parse form file %s: %w", path, err)
	}

	// Attachment paths are relative to the form file.
	if f.Attachment != "" && !filepath.IsAbs(f.Attachment) {
		f.Attachment = filepath.Join(filepath.Dir(path), f.Attachment)
	}
	return f, nil
}

// events turns the description into the edits a user would make. The form
// starts with record 1, so project i is record i+1.
func (f formFile) events() []core.Event {
	evs := []core.Event{
		core.SetField{Field: core.FieldDistrict, Value: f.District},
		core.SetField{Field: core.FieldDivision, Value: f.Division},
		core.SetField{Field: core.FieldSubdivision, Value: f.GN},
	}

	for i, p := range f.Projects {
		if i > 0 {
			evs = append(evs, core.AddRecord{})
		}
		id := i + 1
		for _, fv := range []struct {
			field core.RecordField
			value string
		}{
			{core.FieldProposal, p.Proposal},
			{core.FieldEstimatedCost, p.EstimatedCost},
			{core.FieldApproach, p.Approach},
			{core.FieldSDGGoals, p.SDGGoals},
			{core.FieldFundingSource, p.FundingSource},
			{core.FieldName, p.Name},
			{core.FieldInstitution, p.Institution},
		} {
			if fv.value != "" {
				evs = append(evs, core.UpdateRecord{ID: id, Field: fv.field, Value: fv.value})
			}
		}
	}
	return evs
}

// replay dispatches events and stops at the first refused input.
func replay(ctx context.Context, c *core.Controller, evs []core.Event) (core.Form, error) {
	f := c.State()
	for _, ev := range evs {
		f = c.Dispatch(ctx, ev)
		if f.Phase == core.PhaseFailed {
			return f, fmt.Errorf("%w: %T (%s)", errRejected, ev, f.Message.Code)
		}
	}
	return f, nil
}
