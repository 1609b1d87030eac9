//go:build !debug_mem_arena

package memutil

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_mem_arena build tag is present
func DebugValidate(validatable Validatable) {
}
