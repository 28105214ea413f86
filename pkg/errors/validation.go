package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates an input or output file path given on the command
// line or inside a recipe.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// recipeExtensions lists the file extensions accepted for recipes and PDK
// overrides.
var recipeExtensions = map[string]bool{
	".toml": true,
	".yaml": true,
	".yml":  true,
}

// ValidateRecipeFilename validates that a recipe or config file has a
// supported extension.
func ValidateRecipeFilename(filename string) error {
	if err := ValidatePath(filename); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !recipeExtensions[ext] {
		return New(ErrCodeInvalidRecipe, "unsupported recipe extension %q (want .toml, .yaml or .yml)", ext)
	}
	return nil
}

// cellNameRegex matches cell names that every GDS reader accepts.
var cellNameRegex = regexp.MustCompile(`^[A-Za-z0-9_$?.-]+$`)

// ValidateCellName validates a GDS structure name.
func ValidateCellName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidCellName, "cell name cannot be empty")
	}
	if len(name) > 255 {
		return New(ErrCodeInvalidCellName, "cell name too long (max 255 characters)")
	}
	if !cellNameRegex.MatchString(name) {
		return New(ErrCodeInvalidCellName, "invalid cell name: %q", name)
	}
	return nil
}

// ValidateLayer validates a GDS layer or datatype number.
func ValidateLayer(layer, datatype int) error {
	if layer < 0 || layer > 32767 {
		return New(ErrCodeInvalidConfig, "layer %d out of range [0, 32767]", layer)
	}
	if datatype < 0 || datatype > 32767 {
		return New(ErrCodeInvalidConfig, "datatype %d out of range [0, 32767]", datatype)
	}
	return nil
}

// ValidatePositive reports an INVALID_PARAMETER error when v is not
// strictly positive.
func ValidatePositive(component, param string, v float64) error {
	if !(v > 0) {
		return Parameter(component, param, "must be positive, got %g", v)
	}
	return nil
}
