package version

// Version is overridden at build time with -ldflags "-X azor/internal/version.Version=...".
var Version = "dev"
