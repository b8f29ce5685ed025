//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/lumabench/lumabench/backend-go/internal/engine"
	"github.com/lumabench/lumabench/backend-go/internal/optics"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	benchEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	benchEngine.Set("loadDocument", js.FuncOf(loadDocument))
	benchEngine.Set("updateDocument", js.FuncOf(updateDocument))
	benchEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	benchEngine.Set("moveComponent", js.FuncOf(moveComponent))
	benchEngine.Set("rotateComponent", js.FuncOf(rotateComponent))
	benchEngine.Set("setComponentProperty", js.FuncOf(setComponentProperty))
	benchEngine.Set("addComponent", js.FuncOf(addComponent))
	benchEngine.Set("removeComponent", js.FuncOf(removeComponent))
	benchEngine.Set("setSelection", js.FuncOf(setSelection))
	benchEngine.Set("setTraceBounds", js.FuncOf(setTraceBounds))
	benchEngine.Set("setIgnoreDecay", js.FuncOf(setIgnoreDecay))

	// --- Queries (frontend ← backend) ---
	benchEngine.Set("render", js.FuncOf(render))
	benchEngine.Set("hitTest", js.FuncOf(hitTest))
	benchEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	benchEngine.Set("getSelection", js.FuncOf(getSelection))
	benchEngine.Set("getProperties", js.FuncOf(getProperties))
	benchEngine.Set("getDetectorReadings", js.FuncOf(getDetectorReadings))
	benchEngine.Set("getBench", js.FuncOf(getBench))
	benchEngine.Set("getDocument", js.FuncOf(getDocument))
	benchEngine.Set("getRevision", js.FuncOf(getRevision))

	// Register on global scope
	js.Global().Set("benchEngine", benchEngine)

	// Signal that WASM is ready
	js.Global().Set("benchWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	jsonData := args[0].String()
	if err := eng.LoadDocument(jsonData); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func updateDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	jsonData := args[0].String()
	if err := eng.UpdateDocument(jsonData); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	projectID := "proj_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		projectID = args[0].String()
	}

	eng.LoadSampleDocument(projectID)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func moveComponent(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(map[string]interface{}{"error": "need id, x, y"})
	}
	if err := eng.MoveComponent(args[0].String(), args[1].Float(), args[2].Float()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func rotateComponent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "need id, angle"})
	}
	if err := eng.RotateComponent(args[0].String(), args[1].Float()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setComponentProperty(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(map[string]interface{}{"error": "need id, name, value"})
	}
	if err := eng.SetComponentProperty(args[0].String(), args[1].String(), args[2].Float()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func addComponent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing component JSON"})
	}
	var bp optics.Blueprint
	if err := json.Unmarshal([]byte(args[0].String()), &bp); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	if err := eng.AddComponent(bp); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": bp.ID})
}

func removeComponent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing id"})
	}
	if err := eng.RemoveComponent(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	if arr.Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func setTraceBounds(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.SetTraceBounds(args[0].Int(), args[1].Int(), args[2].Float())
	return nil
}

func setIgnoreDecay(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetIgnoreDecay(args[0].Bool())
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(eng.HitTest(x, y))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getProperties(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("[]")
	}
	return js.ValueOf(eng.GetProperties(args[0].String()))
}

func getDetectorReadings(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDetectorReadings())
}

func getBench(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetBench())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getRevision(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Revision())
}
