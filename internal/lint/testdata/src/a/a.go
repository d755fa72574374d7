package a

//errgen:error desc2="oops" // want `unknown key "desc2"`
type BadKey struct{}

//errgen:error desc="x" desc="y" // want `"desc" is already defined`
type Twice struct{}

//errgen:error fmt="query {Query} failed" // want `references \{Query\}, which is not a field of Tmpl`
type Tmpl struct {
	Code int
}

//errgen:error // want `needs exactly one interface`
type (
	A struct{}
	B struct{}
)

//errgen:variant // want `must annotate a type inside`
type Stray struct{}

//errgen:error
type Ambiguous struct{ Err, Cause error } // want `could both be the cause`

//errgen:error
type Clash struct{}

func (Clash) Error() string { return "clash" } // want `Clash already declares Error`

//errgen:error fmt=debug
type (
	Enum interface {
		error
		enum()
	}

	//errgen:variant desc="first"
	First struct{}

	//errgen:variant fmt="code {0:03d}"
	Second int

	Third struct {
		Err error
	}
)

//errgen:error // want `errgen:error cannot annotate functions`
func notAType() {}

//errgen:error
type Tagged struct {
	Op   string
	Base error `errgen:"source"`
}
