package slack

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxTextBytes keeps section text under the Block Kit limit
const maxTextBytes = 3000

// client implements Service interface
type client struct {
	api       *slack.Client
	channelID string
	apiURL    string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithAPIURL overrides the Slack API endpoint
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiURL = url
	}
}

// New creates a new Slack notifier posting to channelID with the bot token
func New(token, channelID string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	c := &client{channelID: channelID}
	for _, opt := range opts {
		opt(c)
	}

	var apiOpts []slack.Option
	if c.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(c.apiURL))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

func (c *client) NotifyIndexing(ctx context.Context, task *model.Task) error {
	text := fmt.Sprintf("Transcript of task `%s` is being indexed", task.ID)
	return c.post(ctx, text, buildBlocks(":books: "+text, task))
}

func (c *client) NotifyFailed(ctx context.Context, task *model.Task) error {
	text := fmt.Sprintf("Transcription of task `%s` failed", task.ID)
	return c.post(ctx, text, buildBlocks(":warning: "+text, task))
}

func (c *client) post(ctx context.Context, text string, blocks []slack.Block) error {
	_, _, err := c.api.PostMessageContext(ctx, c.channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("channel_id", c.channelID))
	}
	return nil
}

func buildBlocks(title string, task *model.Task) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, title, false, false), nil, nil),
	}

	var fields []*slack.TextBlockObject
	if task.Topic != "" {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, "*Topic*\n"+truncateToMaxBytes(task.Topic, maxTextBytes/2), false, false))
	}
	if task.SourceURL != "" {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, "*Source*\n"+truncateToMaxBytes(task.SourceURL, maxTextBytes/2), false, false))
	}
	if task.IngestionJobID != "" {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, "*Ingestion job*\n`"+task.IngestionJobID+"`", false, false))
	}
	if len(fields) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
	}

	if task.Error != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "```"+truncateToMaxBytes(task.Error, maxTextBytes-6)+"```", false, false),
			nil, nil))
	}

	return blocks
}

// truncateToMaxBytes cuts s to at most n bytes without splitting a rune
func truncateToMaxBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
