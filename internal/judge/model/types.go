package model

// TypeTag identifies the declared type of a parameter or function return.
// The set is closed; anything outside it is rejected before a sandbox is
// acquired.
type TypeTag string

const (
	TypeInt    TypeTag = "int"
	TypeFloat  TypeTag = "float"
	TypeDouble TypeTag = "double"
	TypeChar   TypeTag = "char"
	TypeString TypeTag = "string"
	TypeBool   TypeTag = "bool"

	TypeArrayInt   TypeTag = "array_int"
	TypeArrayFloat TypeTag = "array_float"
	TypeArrayChar  TypeTag = "array_char"

	TypeVectorInt    TypeTag = "vector<int>"
	TypeVectorFloat  TypeTag = "vector<float>"
	TypeVectorDouble TypeTag = "vector<double>"
	TypeVectorString TypeTag = "vector<string>"

	// TypeVoid is only valid as a function type.
	TypeVoid TypeTag = "void"
)

var parameterTypes = map[TypeTag]bool{
	TypeInt: true, TypeFloat: true, TypeDouble: true, TypeChar: true,
	TypeString: true, TypeBool: true,
	TypeArrayInt: true, TypeArrayFloat: true, TypeArrayChar: true,
	TypeVectorInt: true, TypeVectorFloat: true, TypeVectorDouble: true,
	TypeVectorString: true,
}

var scalarTypes = map[TypeTag]bool{
	TypeInt: true, TypeFloat: true, TypeDouble: true, TypeChar: true,
	TypeString: true, TypeBool: true,
}

// ValidParameterType reports whether the tag may declare a parameter.
func ValidParameterType(t TypeTag) bool {
	return parameterTypes[t]
}

// ValidFunctionType reports whether the tag may declare the solve return type.
func ValidFunctionType(t TypeTag) bool {
	return t == TypeVoid || scalarTypes[t]
}

// IsSequence reports whether values of the tag are ordered sequences.
func (t TypeTag) IsSequence() bool {
	switch t {
	case TypeArrayInt, TypeArrayFloat, TypeArrayChar,
		TypeVectorInt, TypeVectorFloat, TypeVectorDouble, TypeVectorString:
		return true
	}
	return false
}

// ElementType returns the scalar tag of a sequence type's elements.
func (t TypeTag) ElementType() TypeTag {
	switch t {
	case TypeArrayInt, TypeVectorInt:
		return TypeInt
	case TypeArrayFloat, TypeVectorFloat:
		return TypeFloat
	case TypeVectorDouble:
		return TypeDouble
	case TypeArrayChar:
		return TypeChar
	case TypeVectorString:
		return TypeString
	}
	return t
}
