package harness

import (
	"context"
	"strings"

	"github.com/google/shlex"

	"judgemicro/internal/judge/codec"
	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
)

// compileCommand builds the compiler invocation for a config: user source and
// generated driver in, test_runner out.
func compileCommand(doc *codec.Document, driverFile string) (string, []string, error) {
	flags, err := shlex.Split(doc.Flags)
	if err != nil {
		return "", nil, appErr.Wrapf(err, appErr.ConfigInvalid, "compiler_flags unparseable")
	}

	compiler := "gcc"
	std := "-std=" + doc.Standard
	if doc.Language == model.LanguageCPP {
		compiler = "g++"
		std = "-std=" + strings.Replace(doc.Standard, "cpp", "c++", 1)
	}

	args := append([]string{std}, flags...)
	args = append(args, doc.Language.SourceFileName(), driverFile, "-o", RunnerFileName)
	if doc.Language == model.LanguageC {
		args = append(args, "-lm")
	}
	return compiler, args, nil
}

// compile runs the compiler under the compile timeout. The returned outcome's
// stderr is the compiler diagnostic stream.
func compile(ctx context.Context, workDir string, doc *codec.Document, driverFile string) (outcome, error) {
	compiler, args, err := compileCommand(doc, driverFile)
	if err != nil {
		return outcome{}, err
	}
	return runCommand(ctx, workDir, doc.Limits.CompileTimeout(), compiler, args...)
}
