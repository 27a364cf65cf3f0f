package slack

var (
	TruncateToMaxBytes = truncateToMaxBytes
	BuildBlocks        = buildBlocks
)
