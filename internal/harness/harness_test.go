package harness

import (
	"strings"
	"testing"

	"judgemicro/internal/judge/codec"
	"judgemicro/internal/judge/model"
)

func docWith(lang model.Language, fn model.TypeTag, params ...model.Parameter) *codec.Document {
	settings := model.DefaultCompilerSettings(lang)
	return &codec.Document{
		Params:       params,
		Expected:     map[string]interface{}{},
		FunctionType: fn,
		Language:     lang,
		Standard:     settings.Standard,
		Flags:        settings.Flags,
		Limits:       model.ResourceLimits{}.WithDefaults(),
	}
}

func TestGenerateCDriverSignature(t *testing.T) {
	doc := docWith(model.LanguageC, model.TypeInt,
		model.Parameter{Name: "a", Type: model.TypeInt, InputValue: int64(3)},
		model.Parameter{Name: "b", Type: model.TypeInt, InputValue: int64(4)},
	)
	name, src, err := GenerateDriver(doc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if name != "test_main.c" {
		t.Fatalf("file name = %q", name)
	}
	code := string(src)
	if !strings.Contains(code, "int solve(int *a, int *b);") {
		t.Fatalf("missing C declaration:\n%s", code)
	}
	if !strings.Contains(code, "solve(&a, &b)") {
		t.Fatalf("scalars must pass by address:\n%s", code)
	}
	if !strings.Contains(code, `printf("a: %d\n", a);`) {
		t.Fatalf("missing result line for a:\n%s", code)
	}
	if !strings.Contains(code, `printf("return_value: %d\n", ret);`) {
		t.Fatalf("missing return_value line:\n%s", code)
	}
}

func TestGenerateCDriverArrays(t *testing.T) {
	doc := docWith(model.LanguageC, model.TypeVoid,
		model.Parameter{Name: "xs", Type: model.TypeArrayInt, InputValue: []interface{}{int64(1)}},
	)
	_, src, err := GenerateDriver(doc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	code := string(src)
	if !strings.Contains(code, "void solve(int *xs, int xs_len);") {
		t.Fatalf("array must lower to pointer plus length:\n%s", code)
	}
	if !strings.Contains(code, "solve(xs, xs_len)") {
		t.Fatalf("array call args wrong:\n%s", code)
	}
	if strings.Contains(code, "return_value") {
		t.Fatalf("void function must not print return_value:\n%s", code)
	}
}

func TestGenerateCDriverNoParams(t *testing.T) {
	doc := docWith(model.LanguageC, model.TypeInt)
	_, src, err := GenerateDriver(doc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(src), "int solve(void);") {
		t.Fatalf("empty param list must produce solve(void):\n%s", src)
	}
}

func TestGenerateCPPDriverReferences(t *testing.T) {
	doc := docWith(model.LanguageCPP, model.TypeInt,
		model.Parameter{Name: "v", Type: model.TypeVectorInt, InputValue: []interface{}{int64(1)}},
		model.Parameter{Name: "s", Type: model.TypeString, InputValue: "x"},
		model.Parameter{Name: "d", Type: model.TypeDouble, InputValue: 1.5},
	)
	name, src, err := GenerateDriver(doc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if name != "test_main.cpp" {
		t.Fatalf("file name = %q", name)
	}
	code := string(src)
	if !strings.Contains(code, "int solve(std::vector<int>& v, std::string& s, double& d);") {
		t.Fatalf("missing C++ declaration:\n%s", code)
	}
	if !strings.Contains(code, "solve(v, s, d)") {
		t.Fatalf("references must pass by name:\n%s", code)
	}
}

func TestGenerateCDriverRejectsVectorString(t *testing.T) {
	doc := docWith(model.LanguageC, model.TypeVoid,
		model.Parameter{Name: "v", Type: model.TypeVectorString},
	)
	if _, _, err := GenerateDriver(doc); err == nil {
		t.Fatal("vector<string> must not be representable in C")
	}
}

func TestEncodeParams(t *testing.T) {
	data, err := EncodeParams([]model.Parameter{
		{Name: "n", Type: model.TypeInt, InputValue: int64(-7)},
		{Name: "c", Type: model.TypeChar, InputValue: " "},
		{Name: "ok", Type: model.TypeBool, InputValue: true},
		{Name: "s", Type: model.TypeString, InputValue: "ab cd"},
		{Name: "xs", Type: model.TypeArrayInt, InputValue: []interface{}{int64(1), int64(2)}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// strings are length-prefixed, chars travel as byte values
	want := "-7\n32\n1\n5\nab cd\n2\n1\n2\n"
	if string(data) != want {
		t.Fatalf("params stream = %q, want %q", data, want)
	}
}

func TestSchemaFingerprint(t *testing.T) {
	base := docWith(model.LanguageC, model.TypeInt,
		model.Parameter{Name: "a", Type: model.TypeInt, InputValue: int64(3)},
	)
	same := docWith(model.LanguageC, model.TypeInt,
		model.Parameter{Name: "a", Type: model.TypeInt, InputValue: int64(999)},
	)
	if SchemaFingerprint(base) != SchemaFingerprint(same) {
		t.Error("fingerprint must ignore input values")
	}

	renamed := docWith(model.LanguageC, model.TypeInt,
		model.Parameter{Name: "b", Type: model.TypeInt, InputValue: int64(3)},
	)
	if SchemaFingerprint(base) == SchemaFingerprint(renamed) {
		t.Error("fingerprint must cover parameter names")
	}

	retyped := docWith(model.LanguageC, model.TypeInt,
		model.Parameter{Name: "a", Type: model.TypeDouble, InputValue: 3.0},
	)
	if SchemaFingerprint(base) == SchemaFingerprint(retyped) {
		t.Error("fingerprint must cover parameter types")
	}

	void := docWith(model.LanguageC, model.TypeVoid,
		model.Parameter{Name: "a", Type: model.TypeInt, InputValue: int64(3)},
	)
	if SchemaFingerprint(base) == SchemaFingerprint(void) {
		t.Error("fingerprint must cover the function type")
	}
}

func TestParseActualLastLineWins(t *testing.T) {
	doc := docWith(model.LanguageC, model.TypeInt,
		model.Parameter{Name: "a", Type: model.TypeInt, InputValue: int64(3)},
	)
	stdout := "a: 1\nuser noise\na: 6\nreturn_value: 0\n"
	actual, err := ParseActual(doc, stdout)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if actual["a"] != int64(6) {
		t.Fatalf("a = %v, want 6 (last line wins)", actual["a"])
	}
	if actual[model.ReturnValueKey] != int64(0) {
		t.Fatalf("return_value = %v", actual[model.ReturnValueKey])
	}
}

func TestParseActualMissingLine(t *testing.T) {
	doc := docWith(model.LanguageC, model.TypeInt,
		model.Parameter{Name: "a", Type: model.TypeInt, InputValue: int64(3)},
	)
	if _, err := ParseActual(doc, "return_value: 0\n"); err == nil {
		t.Fatal("missing result line must be an error")
	}
}

func TestCompare(t *testing.T) {
	doc := docWith(model.LanguageC, model.TypeInt,
		model.Parameter{Name: "a", Type: model.TypeInt, InputValue: int64(3)},
		model.Parameter{Name: "xs", Type: model.TypeArrayInt, InputValue: []interface{}{int64(1), int64(2)}},
	)
	doc.Expected = map[string]interface{}{
		"a":  int64(6),
		"xs": []interface{}{int64(2), int64(1)},
	}
	actual := map[string]interface{}{
		"a":                  int64(6),
		"xs":                 []interface{}{int64(2), int64(1)},
		model.ReturnValueKey: int64(0),
	}
	if !Compare(doc, actual) {
		t.Error("matching values reported as mismatch")
	}

	actual["xs"] = []interface{}{int64(1), int64(2)}
	if Compare(doc, actual) {
		t.Error("array order must matter")
	}
}

func TestCompileCommand(t *testing.T) {
	cDoc := docWith(model.LanguageC, model.TypeInt)
	cDoc.Standard, cDoc.Flags = "c11", "-Wall -O2"
	bin, args, err := compileCommand(cDoc, "test_main.c")
	if err != nil {
		t.Fatalf("compileCommand: %v", err)
	}
	if bin != "gcc" {
		t.Fatalf("compiler = %q, want gcc", bin)
	}
	got := strings.Join(args, " ")
	if got != "-std=c11 -Wall -O2 user.c test_main.c -o test_runner -lm" {
		t.Fatalf("args = %q", got)
	}

	cppDoc := docWith(model.LanguageCPP, model.TypeInt)
	cppDoc.Standard, cppDoc.Flags = "cpp20", ""
	bin, args, err = compileCommand(cppDoc, "test_main.cpp")
	if err != nil {
		t.Fatalf("compileCommand: %v", err)
	}
	if bin != "g++" {
		t.Fatalf("compiler = %q, want g++", bin)
	}
	got = strings.Join(args, " ")
	if got != "-std=c++20 user.cpp test_main.cpp -o test_runner" {
		t.Fatalf("args = %q", got)
	}
}
