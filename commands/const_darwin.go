package commands

const (
	_etc = "/usr/local/etc/com.github.uhppoted/sheets-caspio"

	DEFAULT_CONFIG = _etc + "/sheets-caspio.yaml"
)
