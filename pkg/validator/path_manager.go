package validator

import (
	"fmt"
	"strings"
)

// PathManager handles dotted containment paths like project.dataset.table
type PathManager struct{}

// NewPathManager creates a new path manager instance
func NewPathManager() *PathManager {
	return &PathManager{}
}

// JoinPath appends a segment to a parent path (empty parent means root)
func (pm *PathManager) JoinPath(parentPath, segment string) string {
	if parentPath == "" {
		return segment
	}
	return fmt.Sprintf("%s.%s", parentPath, segment)
}

// GetParentPath extracts the parent path from a given path
func (pm *PathManager) GetParentPath(path string) string {
	if path == "" {
		return ""
	}

	lastDot := strings.LastIndex(path, ".")
	if lastDot == -1 {
		return ""
	}

	return path[:lastDot]
}

// GetPathDepth returns the depth level of a path
func (pm *PathManager) GetPathDepth(path string) int {
	if path == "" {
		return 0
	}

	return strings.Count(path, ".") + 1
}

// IsAncestorOf checks if the first path is an ancestor of the second
func (pm *PathManager) IsAncestorOf(ancestorPath, descendantPath string) bool {
	if ancestorPath == "" {
		return true // Root is ancestor of all
	}

	return strings.HasPrefix(descendantPath, ancestorPath+".")
}

// IsDescendantOf checks if the first path is a descendant of the second
func (pm *PathManager) IsDescendantOf(descendantPath, ancestorPath string) bool {
	return pm.IsAncestorOf(ancestorPath, descendantPath)
}

// IsSiblingOf checks if two paths are siblings (same parent)
func (pm *PathManager) IsSiblingOf(path1, path2 string) bool {
	return pm.GetParentPath(path1) == pm.GetParentPath(path2) && path1 != path2
}

// IsDirectChildOf checks if the first path is a direct child of the second
func (pm *PathManager) IsDirectChildOf(childPath, parentPath string) bool {
	return pm.GetParentPath(childPath) == parentPath
}

// GetPathComponents splits a path into its components
func (pm *PathManager) GetPathComponents(path string) []string {
	if path == "" {
		return []string{}
	}

	return strings.Split(path, ".")
}

// ValidatePath validates that a path is a well-formed dotted slug path:
// non-empty components of lowercase letters, digits, underscores and hyphens.
func (pm *PathManager) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	components := pm.GetPathComponents(path)
	for i, component := range components {
		if component == "" {
			return fmt.Errorf("path component %d is empty", i)
		}

		for _, char := range component {
			valid := (char >= 'a' && char <= 'z') ||
				(char >= '0' && char <= '9') ||
				char == '_' || char == '-'
			if !valid {
				return fmt.Errorf("path component %d contains invalid character: %c", i, char)
			}
		}
	}

	return nil
}

// PathComparator provides comparison functions for sorting paths
type PathComparator struct{}

// NewPathComparator creates a new path comparator
func NewPathComparator() *PathComparator {
	return &PathComparator{}
}

// ComparePaths compares two paths for sorting
// Returns -1 if path1 < path2, 0 if equal, 1 if path1 > path2
func (pc *PathComparator) ComparePaths(path1, path2 string) int {
	components1 := strings.Split(path1, ".")
	components2 := strings.Split(path2, ".")

	minLen := len(components1)
	if len(components2) < minLen {
		minLen = len(components2)
	}

	// Compare common components
	for i := 0; i < minLen; i++ {
		if cmp := strings.Compare(components1[i], components2[i]); cmp != 0 {
			return cmp
		}
	}

	// If all common components are equal, shorter path comes first
	if len(components1) < len(components2) {
		return -1
	} else if len(components1) > len(components2) {
		return 1
	}

	return 0
}
