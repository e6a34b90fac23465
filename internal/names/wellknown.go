package names

// Well-known classes of the default namespace.
var (
	Any         = MustClassName("kotlin", "Any")
	AnyNullable = Any.AsNullable()
	Unit        = MustClassName("kotlin", "Unit")
	Nothing     = MustClassName("kotlin", "Nothing")
	Boolean     = MustClassName("kotlin", "Boolean")
	Byte        = MustClassName("kotlin", "Byte")
	Short       = MustClassName("kotlin", "Short")
	Int         = MustClassName("kotlin", "Int")
	Long        = MustClassName("kotlin", "Long")
	Char        = MustClassName("kotlin", "Char")
	Float       = MustClassName("kotlin", "Float")
	Double      = MustClassName("kotlin", "Double")
	String      = MustClassName("kotlin", "String")
	ArrayClass  = MustClassName("kotlin", "Array")

	List       = MustClassName("kotlin.collections", "List")
	Set        = MustClassName("kotlin.collections", "Set")
	Map        = MustClassName("kotlin.collections", "Map")
	MutableMap = MustClassName("kotlin.collections", "MutableMap")
)
