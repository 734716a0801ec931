// Package search maintains a full-text index over message content, fed at
// message creation and queried per room.
package search

import (
	"context"
	"strconv"
	"time"

	"chat-rooms/domain"

	"github.com/blugelabs/bluge"
)

// MessageIndex wraps a bluge index. A single writer owns the index files;
// readers are snapshots taken per query.
type MessageIndex struct {
	writer *bluge.Writer
}

func NewMessageIndex(path string) (*MessageIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &MessageIndex{writer: writer}, nil
}

func (i *MessageIndex) Close() error {
	return i.writer.Close()
}

// Index adds a stored message to the index. Messages are immutable, so an
// update by id is effectively an insert.
func (i *MessageIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewKeywordField("room", message.RoomID)).
		AddField(bluge.NewKeywordField("sender", message.SenderFirstName).StoreValue()).
		AddField(bluge.NewKeywordField("timestamp",
			strconv.FormatInt(message.Timestamp.UnixNano(), 10)).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Result is one search hit.
type Result struct {
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Search runs a match query over message content, restricted to one room.
func (i *MessageIndex) Search(ctx context.Context, roomID, terms string, limit int) ([]Result, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(roomID).SetField("room"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var results []Result
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var result Result
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				result.MessageID = string(value)
			case "content":
				result.Content = string(value)
			case "sender":
				result.Sender = string(value)
			case "timestamp":
				if ns, err := strconv.ParseInt(string(value), 10, 64); err == nil {
					result.Timestamp = time.Unix(0, ns).UTC()
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
