package collab

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lumabench/lumabench/backend-go/internal/document"
	"github.com/lumabench/lumabench/backend-go/internal/optics"
)

// DocumentState holds the authoritative bench document for a room
type DocumentState struct {
	mu        sync.RWMutex
	doc       *document.BenchDocument
	serverSeq int64
	opLog     []Operation // Operation history for persistence
}

// NewDocumentState creates a new document state from an initial document
func NewDocumentState(doc *document.BenchDocument) *DocumentState {
	return &DocumentState{
		doc:       doc,
		serverSeq: 0,
		opLog:     make([]Operation, 0),
	}
}

// GetDocument returns the current document (caller must not mutate)
func (ds *DocumentState) GetDocument() *document.BenchDocument {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.doc
}

// ServerSeq returns the current server sequence number
func (ds *DocumentState) ServerSeq() int64 {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.serverSeq
}

// ApplyOperation applies an operation to the document and returns the server sequence
func (ds *DocumentState) ApplyOperation(op Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := ds.applyOperationLocked(op); err != nil {
		return 0, err
	}

	ds.serverSeq++
	ds.opLog = append(ds.opLog, op)

	return ds.serverSeq, nil
}

// applyOperationLocked applies the operation without locking (caller must hold lock)
func (ds *DocumentState) applyOperationLocked(op Operation) error {
	switch op.Type {
	case "component.move":
		return ds.applyComponentMove(op)
	case "component.rotate":
		return ds.applyComponentRotate(op)
	case "component.param":
		return ds.applyComponentParam(op)
	case "component.create":
		return ds.applyComponentCreate(op)
	case "component.delete":
		return ds.applyComponentDelete(op)
	case "source.move":
		return ds.applySourceMove(op)
	case "source.rotate":
		return ds.applySourceRotate(op)
	case "source.update":
		return ds.applySourceUpdate(op)
	case "source.create":
		return ds.applySourceCreate(op)
	case "source.delete":
		return ds.applySourceDelete(op)
	case "bench.update":
		return ds.applyBenchUpdate(op)
	case "project.rename":
		return ds.applyProjectRename(op)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

func (ds *DocumentState) applyComponentMove(op Operation) error {
	bp, ok := ds.doc.Components[op.ObjectID]
	if !ok {
		return fmt.Errorf("component not found: %s", op.ObjectID)
	}
	if op.X != nil {
		bp.X = *op.X
	}
	if op.Y != nil {
		bp.Y = *op.Y
	}
	ds.doc.Components[op.ObjectID] = bp
	return nil
}

func (ds *DocumentState) applyComponentRotate(op Operation) error {
	bp, ok := ds.doc.Components[op.ObjectID]
	if !ok {
		return fmt.Errorf("component not found: %s", op.ObjectID)
	}
	if op.Angle == nil {
		return fmt.Errorf("rotate missing angle")
	}
	bp.Angle = *op.Angle
	ds.doc.Components[op.ObjectID] = bp
	return nil
}

func (ds *DocumentState) applyComponentParam(op Operation) error {
	bp, ok := ds.doc.Components[op.ObjectID]
	if !ok {
		return fmt.Errorf("component not found: %s", op.ObjectID)
	}
	if op.Param == "" || op.Value == nil {
		return fmt.Errorf("param operation missing name or value")
	}
	if bp.Params == nil {
		bp.Params = make(map[string]float64)
	}
	bp.Params[op.Param] = *op.Value
	ds.doc.Components[op.ObjectID] = bp
	return nil
}

func (ds *DocumentState) applyComponentCreate(op Operation) error {
	var bp optics.Blueprint
	if err := json.Unmarshal(op.Component, &bp); err != nil {
		return fmt.Errorf("invalid component: %w", err)
	}
	if bp.ID == "" {
		return fmt.Errorf("component missing id")
	}
	// Validate the type compiles before accepting it.
	if _, err := optics.FromBlueprint(bp); err != nil {
		return fmt.Errorf("invalid component: %w", err)
	}
	ds.doc.Components[bp.ID] = bp
	return nil
}

func (ds *DocumentState) applyComponentDelete(op Operation) error {
	if _, ok := ds.doc.Components[op.ObjectID]; !ok {
		return fmt.Errorf("component not found: %s", op.ObjectID)
	}
	delete(ds.doc.Components, op.ObjectID)
	return nil
}

func (ds *DocumentState) applySourceMove(op Operation) error {
	src, ok := ds.doc.Sources[op.ObjectID]
	if !ok {
		return fmt.Errorf("source not found: %s", op.ObjectID)
	}
	if op.X != nil {
		src.X = *op.X
	}
	if op.Y != nil {
		src.Y = *op.Y
	}
	ds.doc.Sources[op.ObjectID] = src
	return nil
}

func (ds *DocumentState) applySourceRotate(op Operation) error {
	src, ok := ds.doc.Sources[op.ObjectID]
	if !ok {
		return fmt.Errorf("source not found: %s", op.ObjectID)
	}
	if op.Angle == nil {
		return fmt.Errorf("rotate missing angle")
	}
	src.Angle = *op.Angle
	ds.doc.Sources[op.ObjectID] = src
	return nil
}

func (ds *DocumentState) applySourceUpdate(op Operation) error {
	src, ok := ds.doc.Sources[op.ObjectID]
	if !ok {
		return fmt.Errorf("source not found: %s", op.ObjectID)
	}
	var changes map[string]*float64
	if err := json.Unmarshal(op.Source, &changes); err != nil {
		return fmt.Errorf("invalid source changes: %w", err)
	}
	if v, ok := changes["wavelengthNm"]; ok && v != nil {
		src.WavelengthNm = *v
	}
	if v, ok := changes["intensity"]; ok && v != nil {
		src.Intensity = *v
	}
	if v, ok := changes["polarizationAngle"]; ok {
		// Explicit null clears the polarization (unpolarized source).
		src.PolarizationAngle = v
	}
	ds.doc.Sources[op.ObjectID] = src
	return nil
}

func (ds *DocumentState) applySourceCreate(op Operation) error {
	var src document.Source
	if err := json.Unmarshal(op.Source, &src); err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}
	if src.ID == "" {
		return fmt.Errorf("source missing id")
	}
	ds.doc.Sources[src.ID] = src
	return nil
}

func (ds *DocumentState) applySourceDelete(op Operation) error {
	if _, ok := ds.doc.Sources[op.ObjectID]; !ok {
		return fmt.Errorf("source not found: %s", op.ObjectID)
	}
	delete(ds.doc.Sources, op.ObjectID)
	return nil
}

func (ds *DocumentState) applyBenchUpdate(op Operation) error {
	var changes map[string]interface{}
	if err := json.Unmarshal(op.Changes, &changes); err != nil {
		return fmt.Errorf("invalid bench changes: %w", err)
	}

	if v, ok := changes["width"].(float64); ok {
		ds.doc.Bench.Width = int(v)
	}
	if v, ok := changes["height"].(float64); ok {
		ds.doc.Bench.Height = int(v)
	}
	if v, ok := changes["background"].(string); ok {
		ds.doc.Bench.Background = v
	}
	return nil
}

func (ds *DocumentState) applyProjectRename(op Operation) error {
	ds.doc.Project.Name = op.Name
	return nil
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
