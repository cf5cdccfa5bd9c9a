package harness

import (
	"fmt"
	"strings"

	"judgemicro/internal/judge/codec"
	"judgemicro/internal/judge/model"
)

const cPrelude = `#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include <stdbool.h>

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

static int input_error(void) {
    fprintf(stderr, "malformed test_params.txt\n");
    return 90;
}
`

// cSignature renders one parameter in the solve declaration. Scalars travel
// as out-pointers so the user can mutate them; sequences as pointer + length.
func cSignature(p model.Parameter) (string, error) {
	switch p.Type {
	case model.TypeInt:
		return "int *" + p.Name, nil
	case model.TypeFloat:
		return "float *" + p.Name, nil
	case model.TypeDouble:
		return "double *" + p.Name, nil
	case model.TypeChar:
		return "char *" + p.Name, nil
	case model.TypeBool:
		return "bool *" + p.Name, nil
	case model.TypeString:
		return "char *" + p.Name, nil
	case model.TypeArrayInt, model.TypeVectorInt:
		return fmt.Sprintf("int *%s, int %s_len", p.Name, p.Name), nil
	case model.TypeArrayFloat, model.TypeVectorFloat:
		return fmt.Sprintf("float *%s, int %s_len", p.Name, p.Name), nil
	case model.TypeVectorDouble:
		return fmt.Sprintf("double *%s, int %s_len", p.Name, p.Name), nil
	case model.TypeArrayChar:
		return fmt.Sprintf("char *%s, int %s_len", p.Name, p.Name), nil
	}
	return "", unsupportedType(model.LanguageC, p.Type)
}

func cReturnType(t model.TypeTag) (string, error) {
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
		return "char *", nil
	}
	return "", unsupportedType(model.LanguageC, t)
}

func cRead(b *strings.Builder, p model.Parameter) error {
	n := p.Name
	switch p.Type {
	case model.TypeInt:
		fmt.Fprintf(b, "    int %s;\n    if (fscanf(fp, \"%%d\", &%s) != 1) return input_error();\n", n, n)
	case model.TypeFloat:
		fmt.Fprintf(b, "    float %s;\n    if (fscanf(fp, \"%%f\", &%s) != 1) return input_error();\n", n, n)
	case model.TypeDouble:
		fmt.Fprintf(b, "    double %s;\n    if (fscanf(fp, \"%%lf\", &%s) != 1) return input_error();\n", n, n)
	case model.TypeChar:
		fmt.Fprintf(b, "    int %s_code;\n    if (fscanf(fp, \"%%d\", &%s_code) != 1) return input_error();\n    char %s = (char)%s_code;\n", n, n, n, n)
	case model.TypeBool:
		fmt.Fprintf(b, "    int %s_tmp;\n    if (fscanf(fp, \"%%d\", &%s_tmp) != 1) return input_error();\n    bool %s = %s_tmp != 0;\n", n, n, n, n)
	case model.TypeString:
		fmt.Fprintf(b, `    int %s_len;
    if (fscanf(fp, "%%d", &%s_len) != 1 || %s_len < 0) return input_error();
    fgetc(fp);
    char *%s = (char *)malloc((size_t)%s_len + 4096);
    if (!%s) return input_error();
    if (%s_len > 0 && fread(%s, 1, (size_t)%s_len, fp) != (size_t)%s_len) return input_error();
    %s[%s_len] = '\0';
`, n, n, n, n, n, n, n, n, n, n, n, n)
	case model.TypeArrayInt, model.TypeVectorInt:
		cReadArray(b, n, "int", "%d")
	case model.TypeArrayFloat, model.TypeVectorFloat:
		cReadArray(b, n, "float", "%f")
	case model.TypeVectorDouble:
		cReadArray(b, n, "double", "%lf")
	case model.TypeArrayChar:
		fmt.Fprintf(b, `    int %s_len;
    if (fscanf(fp, "%%d", &%s_len) != 1 || %s_len < 0) return input_error();
    char *%s = (char *)malloc((size_t)(%s_len > 0 ? %s_len : 1));
    if (!%s) return input_error();
    for (int i = 0; i < %s_len; i++) {
        int c;
        if (fscanf(fp, "%%d", &c) != 1) return input_error();
        %s[i] = (char)c;
    }
`, n, n, n, n, n, n, n, n, n)
	default:
		return unsupportedType(model.LanguageC, p.Type)
	}
	return nil
}

func cReadArray(b *strings.Builder, n, ctype, verb string) {
	fmt.Fprintf(b, `    int %s_len;
    if (fscanf(fp, "%%d", &%s_len) != 1 || %s_len < 0) return input_error();
    %s *%s = (%s *)malloc(sizeof(%s) * (size_t)(%s_len > 0 ? %s_len : 1));
    if (!%s) return input_error();
    for (int i = 0; i < %s_len; i++) {
        if (fscanf(fp, "%s", &%s[i]) != 1) return input_error();
    }
`, n, n, n, ctype, n, ctype, ctype, n, n, n, n, verb, n)
}

// cPrint emits the result line for a named scalar or sequence expression.
func cPrintScalar(b *strings.Builder, label, expr string, t model.TypeTag) {
	switch t {
	case model.TypeInt:
		fmt.Fprintf(b, "    printf(\"%s: %%d\\n\", %s);\n", label, expr)
	case model.TypeFloat:
		fmt.Fprintf(b, "    printf(\"%s: %%.9g\\n\", (double)%s);\n", label, expr)
	case model.TypeDouble:
		fmt.Fprintf(b, "    printf(\"%s: %%.17g\\n\", %s);\n", label, expr)
	case model.TypeBool:
		fmt.Fprintf(b, "    printf(\"%s: %%s\\n\", %s ? \"true\" : \"false\");\n", label, expr)
	}
}

func cPrint(b *strings.Builder, label string, p model.Parameter) {
	n := p.Name
	switch p.Type {
	case model.TypeInt, model.TypeFloat, model.TypeDouble, model.TypeBool:
		cPrintScalar(b, label, n, p.Type)
	case model.TypeChar:
		fmt.Fprintf(b, "    printf(\"%s: \");\n    print_json_string(&%s, 1);\n    printf(\"\\n\");\n", label, n)
	case model.TypeString:
		fmt.Fprintf(b, "    printf(\"%s: \");\n    print_json_string(%s, strlen(%s));\n    printf(\"\\n\");\n", label, n, n)
	case model.TypeArrayInt, model.TypeVectorInt:
		cPrintArray(b, label, n, "printf(i ? \", %d\" : \"%d\", "+n+"[i]);")
	case model.TypeArrayFloat, model.TypeVectorFloat:
		cPrintArray(b, label, n, "printf(i ? \", %.9g\" : \"%.9g\", (double)"+n+"[i]);")
	case model.TypeVectorDouble:
		cPrintArray(b, label, n, "printf(i ? \", %.17g\" : \"%.17g\", "+n+"[i]);")
	case model.TypeArrayChar:
		cPrintArray(b, label, n, "if (i) printf(\", \");\n        print_json_string(&"+n+"[i], 1);")
	}
}

func cPrintArray(b *strings.Builder, label, n, elemStmt string) {
	fmt.Fprintf(b, `    printf("%s: [");
    for (int i = 0; i < %s_len; i++) {
        %s
    }
    printf("]\n");
`, label, n, elemStmt)
}

func generateCDriver(doc *codec.Document) ([]byte, error) {
	var sig []string
	for _, p := range doc.Params {
		s, err := cSignature(p)
		if err != nil {
			return nil, err
		}
		sig = append(sig, s)
	}
	retType, err := cReturnType(doc.FunctionType)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(cPrelude)
	b.WriteString("\n")
	if len(sig) == 0 {
		fmt.Fprintf(&b, "%s solve(void);\n\n", retType)
	} else {
		fmt.Fprintf(&b, "%s solve(%s);\n\n", retType, strings.Join(sig, ", "))
	}
	b.WriteString("int main(void) {\n")
	b.WriteString("    FILE *fp = fopen(\"" + ParamsFileName + "\", \"r\");\n")
	b.WriteString("    if (!fp) return input_error();\n\n")

	for _, p := range doc.Params {
		if err := cRead(&b, p); err != nil {
			return nil, err
		}
	}
	b.WriteString("    fclose(fp);\n\n")

	var args []string
	for _, p := range doc.Params {
		switch p.Type {
		case model.TypeString:
			args = append(args, p.Name)
		case model.TypeArrayInt, model.TypeArrayFloat, model.TypeArrayChar,
			model.TypeVectorInt, model.TypeVectorFloat, model.TypeVectorDouble:
			args = append(args, p.Name, p.Name+"_len")
		default:
			args = append(args, "&"+p.Name)
		}
	}
	call := fmt.Sprintf("solve(%s)", strings.Join(args, ", "))
	if doc.FunctionType == model.TypeVoid {
		fmt.Fprintf(&b, "    %s;\n\n", call)
	} else {
		fmt.Fprintf(&b, "    %s ret = %s;\n\n", retType, call)
	}

	for _, p := range doc.Params {
		cPrint(&b, p.Name, p)
	}
	switch doc.FunctionType {
	case model.TypeVoid:
	case model.TypeChar:
		b.WriteString("    printf(\"" + model.ReturnValueKey + ": \");\n    print_json_string(&ret, 1);\n    printf(\"\\n\");\n")
	case model.TypeString:
		b.WriteString("    printf(\"" + model.ReturnValueKey + ": \");\n    print_json_string(ret, strlen(ret));\n    printf(\"\\n\");\n")
	default:
		cPrintScalar(&b, model.ReturnValueKey, "ret", doc.FunctionType)
	}
	b.WriteString("    fflush(stdout);\n    return 0;\n}\n")
	return []byte(b.String()), nil
}
