package registry

import "github.com/go-gost/dgram/pkg/frontend"

var (
	frontendReg Registry[*frontend.Frontend] = NewRegistry[*frontend.Frontend]()
)

// FrontendRegistry holds the frontends declared by the configuration, by
// name.
func FrontendRegistry() Registry[*frontend.Frontend] {
	return frontendReg
}
