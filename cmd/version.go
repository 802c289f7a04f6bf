package cmd

// version is overridden at build time with -ldflags "-X .../cmd.version=...".
var version = "1.0.0"
