package harness

import (
	"fmt"
	"strings"

	"judgemicro/internal/judge/codec"
	"judgemicro/internal/judge/model"
)

const cppPrelude = `#include <cstdio>
#include <cstring>
#include <fstream>
#include <string>
#include <vector>

static void print_json_string(const char *s, size_t n) {
    putchar('"');
    for (size_t i = 0; i < n; i++) {
        unsigned char c = (unsigned char)s[i];
        switch (c) {
        case '"': fputs("\\\"", stdout); break;
        case '\\': fputs("\\\\", stdout); break;
        case '\n': fputs("\\n", stdout); break;
        case '\r': fputs("\\r", stdout); break;
        case '\t': fputs("\\t", stdout); break;
        default:
            if (c < 0x20) {
                printf("\\u%04x", c);
            } else {
                putchar(c);
            }
        }
    }
    putchar('"');
}

static void print_json_string(const std::string &s) {
    print_json_string(s.data(), s.size());
}

static int input_error() {
    fprintf(stderr, "malformed test_params.txt\n");
    return 90;
}
`

// cppSignature renders one parameter of the solve declaration. Scalars and
// standard containers travel by reference; C-style array tags stay pointer
// plus length even in C++ mode.
func cppSignature(p model.Parameter) (string, error) {
	switch p.Type {
	case model.TypeInt:
		return "int& " + p.Name, nil
	case model.TypeFloat:
		return "float& " + p.Name, nil
	case model.TypeDouble:
		return "double& " + p.Name, nil
	case model.TypeChar:
		return "char& " + p.Name, nil
	case model.TypeBool:
		return "bool& " + p.Name, nil
	case model.TypeString:
		return "std::string& " + p.Name, nil
	case model.TypeVectorInt:
		return "std::vector<int>& " + p.Name, nil
	case model.TypeVectorFloat:
		return "std::vector<float>& " + p.Name, nil
	case model.TypeVectorDouble:
		return "std::vector<double>& " + p.Name, nil
	case model.TypeVectorString:
		return "std::vector<std::string>& " + p.Name, nil
	case model.TypeArrayInt:
		return fmt.Sprintf("int* %s, int %s_len", p.Name, p.Name), nil
	case model.TypeArrayFloat:
		return fmt.Sprintf("float* %s, int %s_len", p.Name, p.Name), nil
	case model.TypeArrayChar:
		return fmt.Sprintf("char* %s, int %s_len", p.Name, p.Name), nil
	}
	return "", unsupportedType(model.LanguageCPP, p.Type)
}

func cppReturnType(t model.TypeTag) (string, error) {
	switch t {
	case model.TypeVoid:
		return "void", nil
	case model.TypeInt:
		return "int", nil
	case model.TypeFloat:
		return "float", nil
	case model.TypeDouble:
		return "double", nil
	case model.TypeChar:
		return "char", nil
	case model.TypeBool:
		return "bool", nil
	case model.TypeString:
		return "std::string", nil
	}
	return "", unsupportedType(model.LanguageCPP, t)
}

func cppRead(b *strings.Builder, p model.Parameter) error {
	n := p.Name
	switch p.Type {
	case model.TypeInt, model.TypeFloat, model.TypeDouble:
		ctype := map[model.TypeTag]string{
			model.TypeInt: "int", model.TypeFloat: "float", model.TypeDouble: "double",
		}[p.Type]
		fmt.Fprintf(b, "    %s %s;\n    if (!(fin >> %s)) return input_error();\n", ctype, n, n)
	case model.TypeChar:
		fmt.Fprintf(b, "    int %s_code;\n    if (!(fin >> %s_code)) return input_error();\n    char %s = (char)%s_code;\n", n, n, n, n)
	case model.TypeBool:
		fmt.Fprintf(b, "    int %s_tmp;\n    if (!(fin >> %s_tmp)) return input_error();\n    bool %s = %s_tmp != 0;\n", n, n, n, n)
	case model.TypeString:
		cppReadString(b, n, "    ")
	case model.TypeVectorInt:
		cppReadVector(b, n, "int")
	case model.TypeVectorFloat:
		cppReadVector(b, n, "float")
	case model.TypeVectorDouble:
		cppReadVector(b, n, "double")
	case model.TypeVectorString:
		fmt.Fprintf(b, `    int %s_len;
    if (!(fin >> %s_len) || %s_len < 0) return input_error();
    std::vector<std::string> %s((size_t)%s_len);
    for (int i = 0; i < %s_len; i++) {
`, n, n, n, n, n, n)
		fmt.Fprintf(b, `        int elen;
        if (!(fin >> elen) || elen < 0) return input_error();
        fin.get();
        %s[i].assign((size_t)elen, '\0');
        if (elen > 0 && !fin.read(&%s[i][0], elen)) return input_error();
    }
`, n, n)
	case model.TypeArrayInt:
		cppReadCArray(b, n, "int")
	case model.TypeArrayFloat:
		cppReadCArray(b, n, "float")
	case model.TypeArrayChar:
		fmt.Fprintf(b, `    int %s_len;
    if (!(fin >> %s_len) || %s_len < 0) return input_error();
    char* %s = new char[%s_len > 0 ? %s_len : 1];
    for (int i = 0; i < %s_len; i++) {
        int c;
        if (!(fin >> c)) return input_error();
        %s[i] = (char)c;
    }
`, n, n, n, n, n, n, n, n)
	default:
		return unsupportedType(model.LanguageCPP, p.Type)
	}
	return nil
}

func cppReadString(b *strings.Builder, n, indent string) {
	fmt.Fprintf(b, `%sint %s_len;
%sif (!(fin >> %s_len) || %s_len < 0) return input_error();
%sfin.get();
%sstd::string %s((size_t)%s_len, '\0');
%sif (%s_len > 0 && !fin.read(&%s[0], %s_len)) return input_error();
`, indent, n, indent, n, n, indent, indent, n, n, indent, n, n, n)
}

func cppReadVector(b *strings.Builder, n, elem string) {
	fmt.Fprintf(b, `    int %s_len;
    if (!(fin >> %s_len) || %s_len < 0) return input_error();
    std::vector<%s> %s((size_t)%s_len);
    for (int i = 0; i < %s_len; i++) {
        if (!(fin >> %s[i])) return input_error();
    }
`, n, n, n, elem, n, n, n, n)
}

func cppReadCArray(b *strings.Builder, n, elem string) {
	fmt.Fprintf(b, `    int %s_len;
    if (!(fin >> %s_len) || %s_len < 0) return input_error();
    %s* %s = new %s[%s_len > 0 ? %s_len : 1];
    for (int i = 0; i < %s_len; i++) {
        if (!(fin >> %s[i])) return input_error();
    }
`, n, n, n, elem, n, elem, n, n, n, n)
}

func cppPrint(b *strings.Builder, label string, p model.Parameter) {
	n := p.Name
	switch p.Type {
	case model.TypeInt, model.TypeFloat, model.TypeDouble, model.TypeBool:
		cPrintScalar(b, label, n, p.Type)
	case model.TypeChar:
		fmt.Fprintf(b, "    printf(\"%s: \");\n    print_json_string(&%s, 1);\n    printf(\"\\n\");\n", label, n)
	case model.TypeString:
		fmt.Fprintf(b, "    printf(\"%s: \");\n    print_json_string(%s);\n    printf(\"\\n\");\n", label, n)
	case model.TypeVectorInt:
		cppPrintSized(b, label, "(int)"+n+".size()", "printf(i ? \", %d\" : \"%d\", "+n+"[i]);")
	case model.TypeVectorFloat:
		cppPrintSized(b, label, "(int)"+n+".size()", "printf(i ? \", %.9g\" : \"%.9g\", (double)"+n+"[i]);")
	case model.TypeVectorDouble:
		cppPrintSized(b, label, "(int)"+n+".size()", "printf(i ? \", %.17g\" : \"%.17g\", "+n+"[i]);")
	case model.TypeVectorString:
		cppPrintSized(b, label, "(int)"+n+".size()", "if (i) printf(\", \");\n        print_json_string("+n+"[i]);")
	case model.TypeArrayInt:
		cppPrintSized(b, label, n+"_len", "printf(i ? \", %d\" : \"%d\", "+n+"[i]);")
	case model.TypeArrayFloat:
		cppPrintSized(b, label, n+"_len", "printf(i ? \", %.9g\" : \"%.9g\", (double)"+n+"[i]);")
	case model.TypeArrayChar:
		cppPrintSized(b, label, n+"_len", "if (i) printf(\", \");\n        print_json_string(&"+n+"[i], 1);")
	}
}

func cppPrintSized(b *strings.Builder, label, sizeExpr, elemStmt string) {
	fmt.Fprintf(b, `    printf("%s: [");
    for (int i = 0; i < %s; i++) {
        %s
    }
    printf("]\n");
`, label, sizeExpr, elemStmt)
}

func generateCPPDriver(doc *codec.Document) ([]byte, error) {
	var sig []string
	for _, p := range doc.Params {
		s, err := cppSignature(p)
		if err != nil {
			return nil, err
		}
		sig = append(sig, s)
	}
	retType, err := cppReturnType(doc.FunctionType)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(cppPrelude)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s solve(%s);\n\n", retType, strings.Join(sig, ", "))
	b.WriteString("int main() {\n")
	b.WriteString("    std::ifstream fin(\"" + ParamsFileName + "\");\n")
	b.WriteString("    if (!fin) return input_error();\n\n")

	for _, p := range doc.Params {
		if err := cppRead(&b, p); err != nil {
			return nil, err
		}
	}
	b.WriteString("\n")

	var args []string
	for _, p := range doc.Params {
		switch p.Type {
		case model.TypeArrayInt, model.TypeArrayFloat, model.TypeArrayChar:
			args = append(args, p.Name, p.Name+"_len")
		default:
			args = append(args, p.Name)
		}
	}
	call := fmt.Sprintf("solve(%s)", strings.Join(args, ", "))
	if doc.FunctionType == model.TypeVoid {
		fmt.Fprintf(&b, "    %s;\n\n", call)
	} else {
		fmt.Fprintf(&b, "    %s ret = %s;\n\n", retType, call)
	}

	for _, p := range doc.Params {
		cppPrint(&b, p.Name, p)
	}
	switch doc.FunctionType {
	case model.TypeVoid:
	case model.TypeChar:
		b.WriteString("    printf(\"" + model.ReturnValueKey + ": \");\n    print_json_string(&ret, 1);\n    printf(\"\\n\");\n")
	case model.TypeString:
		b.WriteString("    printf(\"" + model.ReturnValueKey + ": \");\n    print_json_string(ret);\n    printf(\"\\n\");\n")
	default:
		cPrintScalar(&b, model.ReturnValueKey, "ret", doc.FunctionType)
	}
	b.WriteString("    fflush(stdout);\n    return 0;\n}\n")
	return []byte(b.String()), nil
}
