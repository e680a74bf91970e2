package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/trademesh/workspace"
)

// DefaultWorkspaceRun is the file namespace used when a call omits run_id.
const DefaultWorkspaceRun = "shared"

// WorkspaceManagerTool exposes run file storage as a callable tool.
//
// It lets agents and tool servers persist and retrieve intermediate
// artifacts (converted documents, screenshots, analysis notes) through the
// shared workspace without knowing the backing implementation.
type WorkspaceManagerTool struct {
	name        string
	description string
	store       workspace.Store
}

// NewWorkspaceManagerTool creates a workspace management tool backed by store.
//
// The tool provides operations for:
//   - Saving text files into a run's workspace
//   - Loading files back out
//   - Listing and deleting files
func NewWorkspaceManagerTool(store workspace.Store) *WorkspaceManagerTool {
	return &WorkspaceManagerTool{
		name: "workspace_manager",
		description: "Manages files in the shared run workspace. " +
			"Supports operations: save_file, load_file, list_files, delete_file.",
		store: store,
	}
}

// Name returns the tool identifier.
func (t *WorkspaceManagerTool) Name() string {
	return t.name
}

// Description returns the tool description.
func (t *WorkspaceManagerTool) Description() string {
	return t.description
}

// Parameters returns the JSON schema for tool parameters.
func (t *WorkspaceManagerTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"operation": map[string]interface{}{
				"type": "string",
				"enum": []string{
					"save_file", "load_file", "list_files", "delete_file",
				},
				"description": "The workspace operation to perform",
			},
			"run_id": map[string]interface{}{
				"type":        "string",
				"description": "Workflow run the file belongs to (default: shared)",
			},
			"file_name": map[string]interface{}{
				"type":        "string",
				"description": "File name for save_file/load_file/delete_file operations",
			},
			"data": map[string]interface{}{
				"type":        "string",
				"description": "File content for save_file operations",
			},
		},
		"required": []string{"operation"},
	}
}

// Call implements the Tool interface with structured arguments.
func (t *WorkspaceManagerTool) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	operation, ok := args["operation"].(string)
	if !ok {
		return nil, fmt.Errorf("operation parameter is required")
	}

	runID := DefaultWorkspaceRun
	if r, ok := args["run_id"].(string); ok && r != "" {
		runID = r
	}

	switch operation {
	case "save_file":
		return t.handleSaveFile(runID, args)
	case "load_file":
		return t.handleLoadFile(runID, args)
	case "list_files":
		return t.handleListFiles(runID)
	case "delete_file":
		return t.handleDeleteFile(runID, args)
	default:
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}
}

// handleSaveFile writes a file into the run's workspace.
func (t *WorkspaceManagerTool) handleSaveFile(runID string, args map[string]interface{}) (interface{}, error) {
	fileName, ok := args["file_name"].(string)
	if !ok {
		return nil, fmt.Errorf("file_name parameter is required for save_file operation")
	}

	dataStr, ok := args["data"].(string)
	if !ok {
		return nil, fmt.Errorf("data parameter is required for save_file operation")
	}

	// Content arrives as plain text. Binary artifacts (screenshots, PDFs)
	// are written by the producing tool directly, not through this path.
	data := []byte(dataStr)

	if err := t.store.Save(runID, fileName, data); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return map[string]interface{}{
		"run_id":    runID,
		"file_name": fileName,
		"size":      len(data),
		"success":   true,
		"message":   fmt.Sprintf("File '%s' saved successfully", fileName),
	}, nil
}

// handleLoadFile reads a file back out of the run's workspace.
func (t *WorkspaceManagerTool) handleLoadFile(runID string, args map[string]interface{}) (interface{}, error) {
	fileName, ok := args["file_name"].(string)
	if !ok {
		return nil, fmt.Errorf("file_name parameter is required for load_file operation")
	}

	data, err := t.store.Get(runID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}

	return map[string]interface{}{
		"run_id":    runID,
		"file_name": fileName,
		"data":      string(data),
		"size":      len(data),
		"success":   true,
	}, nil
}

// handleListFiles lists the files stored for a run.
func (t *WorkspaceManagerTool) handleListFiles(runID string) (interface{}, error) {
	files, err := t.store.List(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return map[string]interface{}{
		"run_id":  runID,
		"files":   files,
		"count":   len(files),
		"success": true,
	}, nil
}

// handleDeleteFile removes a file from the run's workspace.
func (t *WorkspaceManagerTool) handleDeleteFile(runID string, args map[string]interface{}) (interface{}, error) {
	fileName, ok := args["file_name"].(string)
	if !ok {
		return nil, fmt.Errorf("file_name parameter is required for delete_file operation")
	}

	if err := t.store.Delete(runID, fileName); err != nil {
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}

	return map[string]interface{}{
		"run_id":    runID,
		"file_name": fileName,
		"success":   true,
		"message":   fmt.Sprintf("File '%s' deleted successfully", fileName),
	}, nil
}
