package harness

import (
	"judgemicro/internal/judge/codec"
	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
)

const (
	// RunnerFileName is the compiled driver binary.
	RunnerFileName = "test_runner"
	// SchemaFileName records the fingerprint of the binary sitting next to it.
	SchemaFileName = ".schema"

	driverFileC   = "test_main.c"
	driverFileCPP = "test_main.cpp"
)

// GenerateDriver synthesizes the test program for a configuration. The driver
// declares solve with the configured signature, reads input values from
// test_params.txt at startup, calls solve once, and prints one result line per
// parameter plus return_value for non-void functions.
func GenerateDriver(doc *codec.Document) (fileName string, source []byte, err error) {
	if doc.Language == model.LanguageCPP {
		src, err := generateCPPDriver(doc)
		return driverFileCPP, src, err
	}
	src, err := generateCDriver(doc)
	return driverFileC, src, err
}

func unsupportedType(lang model.Language, t model.TypeTag) error {
	return appErr.ConfigError(appErr.ConfigInvalid, string(t), "not representable in "+string(lang))
}
