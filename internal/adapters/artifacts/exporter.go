// Package artifacts writes the files of a planning run to a blob store.
package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"assemblycore/internal/blob"
	"assemblycore/internal/core"
	"assemblycore/internal/csvio"
	"assemblycore/internal/render"
	"assemblycore/pkg/domain"
)

// Artifact file suffixes appended to the run's base name.
const (
	ClipRunInfoSuffix          = "_clip_run_info.csv"
	FinalAssemblyRunInfoSuffix = "_final_assembly_run_info.csv"
	WellsSuffix                = "_wells.txt"
	BundleSuffix               = "_bundle.json"
)

const (
	// DefaultEthanolWell is the reagent plate well holding ethanol for bead washes.
	DefaultEthanolWell = "A11"
	// DefaultSOCColumn is the first deep well plate column holding SOC media.
	DefaultSOCColumn = "A1"

	metadataRunID = "run-id"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// RunPrefix returns the key prefix every artifact of runID is stored under.
func RunPrefix(runID string) string { return "runs/" + runID + "/" }

// Extras carries the run inputs that shape artifact names and operator notes.
type Extras struct {
	// BaseName prefixes the information files, usually the constructs file stem.
	BaseName    string
	EthanolWell string
	SOCColumn   string
}

// Exporter materializes a bundle into run artifacts.
type Exporter struct {
	store    blob.Store
	renderer *render.Renderer
	logger   core.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRenderer enables protocol script rendering.
func WithRenderer(r *render.Renderer) Option {
	return func(e *Exporter) { e.renderer = r }
}

// WithLogger sets the exporter logger.
func WithLogger(logger core.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter returns an exporter writing to store.
func NewExporter(store blob.Store, opts ...Option) *Exporter {
	e := &Exporter{store: store, logger: core.NopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type renderedArtifact struct {
	name        string
	contentType string
	payload     []byte
}

// Export writes every artifact of the run under RunPrefix(runID). Artifacts are
// written only when all of them materialize; a failed upload removes the ones
// already stored.
func (e *Exporter) Export(ctx context.Context, runID string, bundle domain.Bundle, extras Extras) ([]domain.ArtifactRef, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, errors.New("run id is required")
	}
	extras, err := normalizeExtras(extras)
	if err != nil {
		return nil, err
	}
	rendered, err := e.materialize(bundle, extras)
	if err != nil {
		return nil, err
	}

	prefix := RunPrefix(runID)
	refs := make([]domain.ArtifactRef, 0, len(rendered))
	for _, art := range rendered {
		key := path.Join(prefix, art.name)
		info, err := e.store.Put(ctx, key, bytes.NewReader(art.payload), blob.PutOptions{
			ContentType: art.contentType,
			Metadata:    map[string]string{metadataRunID: runID},
		})
		if err != nil {
			e.Remove(ctx, refs)
			return nil, fmt.Errorf("store %s: %w", key, err)
		}
		refs = append(refs, domain.ArtifactRef{
			Key:         info.Key,
			ContentType: art.contentType,
			Size:        info.Size,
			URL:         e.url(ctx, info),
		})
	}
	e.logger.Info("artifacts exported", "run_id", runID, "count", len(refs), "driver", string(e.store.Driver()))
	return refs, nil
}

func (e *Exporter) materialize(bundle domain.Bundle, extras Extras) ([]renderedArtifact, error) {
	var clipInfo, finalInfo, wells bytes.Buffer
	if err := csvio.WriteClipRunInfo(&clipInfo, bundle); err != nil {
		return nil, fmt.Errorf("clip run info: %w", err)
	}
	if err := csvio.WriteFinalAssemblies(&finalInfo, bundle.FinalAssemblies); err != nil {
		return nil, fmt.Errorf("final assembly run info: %w", err)
	}
	if err := csvio.WriteWells(&wells, extras.EthanolWell, extras.SOCColumn); err != nil {
		return nil, fmt.Errorf("wells: %w", err)
	}
	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}

	out := []renderedArtifact{
		{name: extras.BaseName + ClipRunInfoSuffix, contentType: blob.ContentTypeCSV, payload: clipInfo.Bytes()},
		{name: extras.BaseName + FinalAssemblyRunInfoSuffix, contentType: blob.ContentTypeCSV, payload: finalInfo.Bytes()},
		{name: extras.BaseName + WellsSuffix, contentType: blob.ContentTypeText, payload: wells.Bytes()},
		{name: extras.BaseName + BundleSuffix, contentType: blob.ContentTypeJSON, payload: payload},
	}
	if e.renderer == nil {
		return out, nil
	}
	scripts, err := e.renderer.Render(bundle, render.Options{EthanolWell: extras.EthanolWell, SOCColumn: extras.SOCColumn})
	if err != nil {
		return nil, err
	}
	for _, s := range scripts {
		out = append(out, renderedArtifact{name: s.Name, contentType: blob.ContentTypePython, payload: s.Content})
	}
	return out, nil
}

// url prefers the store's own URL and falls back to a presigned GET.
func (e *Exporter) url(ctx context.Context, info blob.Info) string {
	if info.URL != "" {
		return info.URL
	}
	u, err := e.store.PresignURL(ctx, info.Key, blob.SignedURLOptions{})
	if err != nil {
		e.logger.Debug("presign skipped", "key", info.Key, "error", err)
		return ""
	}
	return u
}

// Remove deletes previously exported artifacts. Failures are logged, not returned.
func (e *Exporter) Remove(ctx context.Context, refs []domain.ArtifactRef) {
	for _, ref := range refs {
		if _, err := e.store.Delete(ctx, ref.Key); err != nil {
			e.logger.Warn("artifact rollback failed", "key", ref.Key, "error", err)
		}
	}
}

func normalizeExtras(extras Extras) (Extras, error) {
	if extras.BaseName == "" {
		extras.BaseName = "plan"
	}
	if strings.ContainsAny(extras.BaseName, `/\`) {
		return Extras{}, fmt.Errorf("base name %q must not contain path separators", extras.BaseName)
	}
	if extras.EthanolWell == "" {
		extras.EthanolWell = DefaultEthanolWell
	}
	if extras.SOCColumn == "" {
		extras.SOCColumn = DefaultSOCColumn
	}
	if _, err := core.ParseWell(extras.EthanolWell); err != nil {
		return Extras{}, fmt.Errorf("ethanol well: %w", err)
	}
	if _, err := core.ParseWell(extras.SOCColumn); err != nil {
		return Extras{}, fmt.Errorf("soc column: %w", err)
	}
	return extras, nil
}
