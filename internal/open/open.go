package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatmap/internal/index"
)

// OpenFeature opens the export behind a map in $EDITOR at the line of the
// feature's paired message.
func OpenFeature(db *index.DB, mapKey string, featureID int) error {
	m, err := db.GetMapByKey(mapKey)
	if err != nil {
		return fmt.Errorf("get map: %w", err)
	}
	if m == nil {
		return fmt.Errorf("map not found: %s", mapKey)
	}

	filePath := m.FilePath
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	lineNum := 1
	if featureID >= 0 {
		lineNum = featureLine(db, mapKey, featureID)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, filePath, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func featureLine(db *index.DB, mapKey string, featureID int) int {
	features, err := db.GetFeatures(mapKey)
	if err != nil {
		return 1
	}
	for _, f := range features {
		if f.FeatureID == featureID && f.LineNumber > 0 {
			return f.LineNumber
		}
	}
	return 1
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"), strings.Contains(editor, "nano"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
