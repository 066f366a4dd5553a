package commands

const (
	DEFAULT_CONFIG = `C:\ProgramData\sheets-caspio\sheets-caspio.yaml`
)
