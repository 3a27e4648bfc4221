package apicontract

import _ "embed"

//go:embed base.yml
var baseSpec []byte

// BaseSpec returns the embedded base OpenAPI document that collection
// operations are added to.
func BaseSpec() []byte {
	return baseSpec
}
