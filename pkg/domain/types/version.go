package types

// Version is overwritten at build time with -ldflags "-X".
var Version = "dev"

// AppName is used as service name in health checks, metrics namespace and logs
const AppName = "romfetch"
