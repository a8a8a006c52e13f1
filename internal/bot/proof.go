package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/jaxron/axonet/pkg/client"
	"github.com/sourcegraph/conc/pool"
	"github.com/tf416/rosterbot/internal/bot/builder/reply"
	"github.com/tf416/rosterbot/internal/bot/constants"
	"github.com/tf416/rosterbot/internal/bot/utils"
	"github.com/tf416/rosterbot/internal/shift"
	"go.uber.org/zap"
)

var (
	ErrDownloadFailed = errors.New("attachment download failed")
	ErrProofTooLarge  = errors.New("attachment exceeds upload limit")
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// proofFile is a downloaded attachment ready to be uploaded again.
type proofFile struct {
	Name string
	Data []byte
}

// proofRelay turns a screenshot posted after /clockout into a formatted log.
type proofRelay struct {
	tracker  *shift.Tracker
	messages messenger
	http     *client.Client
	logger   *zap.Logger
}

func newProofRelay(tracker *shift.Tracker, messages messenger, http *client.Client, logger *zap.Logger) *proofRelay {
	return &proofRelay{
		tracker:  tracker,
		messages: messages,
		http:     http,
		logger:   logger.Named("proof"),
	}
}

// Handle consumes the author's pending proof, reposts the images under the
// formatted log and deletes the original. Returns false when the author had
// no pending proof. On failure the original is kept and the author is asked
// to post manually.
func (r *proofRelay) Handle(ctx context.Context, msg discord.Message, images []discord.Attachment) bool {
	proof, ok := r.tracker.ConsumeProof(msg.Author.ID)
	if !ok {
		return false
	}

	files, err := fetchAttachments(ctx, r.http, images)
	if err != nil {
		r.logger.Error("Failed to download proof attachments",
			zap.String("username", proof.Username),
			zap.Error(err))
		replyTo(ctx, r.messages, msg, reply.ProofFailed, r.logger)

		return true
	}

	builder := discord.NewMessageCreateBuilder().SetContent(shift.FormatProofLog(proof))
	for _, f := range files {
		builder.AddFile(f.Name, "", bytes.NewReader(f.Data))
	}

	if _, err := r.messages.CreateMessage(msg.ChannelID, builder.Build(), rest.WithCtx(ctx)); err != nil {
		r.logger.Error("Failed to post proof log",
			zap.String("username", proof.Username),
			zap.Error(err))
		replyTo(ctx, r.messages, msg, reply.ProofFailed, r.logger)

		return true
	}

	if err := r.messages.DeleteMessage(msg.ChannelID, msg.ID, rest.WithCtx(ctx)); err != nil {
		r.logger.Warn("Failed to delete original proof message", zap.Stringer("messageID", msg.ID), zap.Error(err))
	}

	r.logger.Info("Posted proof log",
		zap.String("username", proof.Username),
		zap.Duration("elapsed", proof.Elapsed),
		zap.Int("files", len(files)))

	return true
}

// proofWindow describes the proof timeout for replies.
func (b *Bot) proofWindow() string {
	return utils.FormatDuration(b.proofTTL)
}

// imageAttachments keeps the attachments that are images.
func imageAttachments(attachments []discord.Attachment) []discord.Attachment {
	var images []discord.Attachment

	for _, a := range attachments {
		if isImage(a) {
			images = append(images, a)
		}
	}

	return images
}

func isImage(a discord.Attachment) bool {
	if a.ContentType != nil && strings.HasPrefix(*a.ContentType, "image/") {
		return true
	}

	ext := strings.ToLower(path.Ext(a.Filename))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}

	return false
}

// fetchAttachments downloads attachments concurrently, keeping their order.
// Retries happen in the client's middleware.
func fetchAttachments(ctx context.Context, http *client.Client, attachments []discord.Attachment) ([]proofFile, error) {
	files := make([]proofFile, len(attachments))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(constants.ProofUploadWorkers)

	for i, a := range attachments {
		p.Go(func(ctx context.Context) error {
			if a.Size > constants.MaxProofFileSize {
				return fmt.Errorf("%w: %s", ErrProofTooLarge, a.Filename)
			}

			data, err := download(ctx, http, a.URL)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Filename, err)
			}

			files[i] = proofFile{Name: a.Filename, Data: data}

			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

// download fetches one attachment, refusing bodies over the upload limit.
func download(ctx context.Context, http *client.Client, url string) ([]byte, error) {
	resp, err := http.NewRequest().URL(url).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrDownloadFailed, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxProofFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	if len(data) > constants.MaxProofFileSize {
		return nil, ErrProofTooLarge
	}

	return data, nil
}
