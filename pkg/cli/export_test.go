package cli

var (
	GetIndexConfig = getIndexConfig
	PrintTask      = printTask
)
