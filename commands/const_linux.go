package commands

const (
	_etc = "/usr/local/etc/sheets-caspio"

	DEFAULT_CONFIG = _etc + "/sheets-caspio.yaml"
)
