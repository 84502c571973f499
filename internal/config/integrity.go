package config

import (
	"fmt"
	"path/filepath"
)

// IntegrityResult collects integrity findings for a config directory.
type IntegrityResult struct {
	Passed   bool
	Warnings []string
	Errors   []string
}

// VerifyIntegrity checks discovered files against the .checksums manifest.
// tokens.yaml findings always fail: it is the file that says who may crash
// this machine, and flipping integrity.enforce off in config.yaml must not
// silence it. Other findings fail only when enforce is set.
func VerifyIntegrity(configDir string, files *ConfigFiles, enforce bool) *IntegrityResult {
	result := &IntegrityResult{Passed: true}
	fail := func(msg string) {
		result.Passed = false
		result.Errors = append(result.Errors, msg)
	}
	report := func(msg string, highSecurity bool) {
		if highSecurity || enforce {
			fail(msg)
		} else {
			result.Warnings = append(result.Warnings, msg)
		}
	}

	manifest, err := LoadChecksums(configDir)
	if err != nil {
		if files.Tokens != "" {
			fail(fmt.Sprintf("tokens.yaml exists but %s is not locked; run 'faultline config lock'", configDir))
		} else {
			report(fmt.Sprintf("no .checksums manifest found in %s; run 'faultline config lock' to authorize this config", configDir), false)
		}
		return result
	}

	seen := make(map[string]bool)
	for _, path := range files.AllFiles() {
		basename := filepath.Base(path)
		seen[basename] = true
		highSecurity := basename == "tokens.yaml"

		expectedHash, inManifest := manifest.Hashes[basename]
		if !inManifest {
			report(fmt.Sprintf("file %s not in .checksums manifest", basename), highSecurity)
			continue
		}

		actualHash, err := ComputeBlake3Hash(path)
		if err != nil {
			report(fmt.Sprintf("failed to hash %s: %v", basename, err), highSecurity)
			continue
		}

		if actualHash != expectedHash {
			report(fmt.Sprintf("hash mismatch for %s (expected %s, got %s)", basename, expectedHash, actualHash), highSecurity)
		}
	}

	for basename := range manifest.Hashes {
		if !seen[basename] {
			report(fmt.Sprintf("file %s is in .checksums but missing from %s", basename, configDir), basename == "tokens.yaml")
		}
	}

	return result
}
