package types

// Version is the shipwright build version. Overwritten at link time with
// -ldflags "-X github.com/m-mizutani/shipwright/pkg/domain/types.Version=..."
var Version = "dev"

// AppName is the service name reported by the CLI and the health endpoint
const AppName = "shipwright"
