package audit

import (
	"sync"

	"github.com/goliatone/go-masker"
)

var defaultMaskerOnce sync.Once

// DefaultMasker returns the shared masker with credential fields registered.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerDefaultMaskFields(masker.Default)
	})
	return masker.Default
}

// SanitizeSnapshot masks sensitive values in a before/after snapshot. A
// snapshot the masker cannot process is dropped rather than stored raw.
func SanitizeSnapshot(mask *masker.Masker, snapshot map[string]any) map[string]any {
	if len(snapshot) == 0 {
		return nil
	}
	if mask == nil {
		mask = DefaultMasker()
	}
	if mask == nil {
		return map[string]any{}
	}
	masked, err := mask.Mask(cloneMap(snapshot))
	if err != nil {
		return map[string]any{}
	}
	if out, ok := masked.(map[string]any); ok {
		return out
	}
	return map[string]any{}
}

func registerDefaultMaskFields(mask *masker.Masker) {
	for _, field := range []string{
		"password",
		"new_password",
		"password_hash",
		"new_password_hash",
		"secret",
		"Secret",
		"NewPasswordHash",
	} {
		mask.RegisterMaskField(field, "filled4")
	}
}

func cloneMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
