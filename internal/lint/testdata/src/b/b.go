package b

//errgen:error
type WithCode struct{ Code int }

//errgen:error
type NoCode struct{ Msg string } // want `references \{Code\}, which is not a field of NoCode`

//errgen:error fmt=display
type Overridden struct{ Msg string }
