// Package merge combines a partial document sent by a client with the
// stored document so that collections the client did not send survive.
package merge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

var (
	ErrStaleMergeDataLoss = errors.New("the request would delete all stored items of a collection. Set the allow deletions flag if this is intended")
	ErrInvalidDocument    = errors.New("the document is not a JSON object with arrays of objects for its collections")
	ErrInvalidMode        = errors.New("the merge mode must be 'normal' or 'strict'")
)

// Mode decides how explicitly empty collections are handled.
type Mode string

const (
	// ModeNormal treats an empty collection as the new content.
	ModeNormal Mode = "normal"

	// ModeStrict rejects an empty collection that would replace stored
	// items unless deletions are allowed.
	ModeStrict Mode = "strict"
)

// ParseMode parses a merge mode. The empty string is ModeNormal.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNormal:
		return ModeNormal, nil
	case ModeStrict:
		return ModeStrict, nil
	}

	return "", fmt.Errorf("%w: %s", ErrInvalidMode, s)
}

type Options struct {
	Mode           Mode
	AllowDeletions bool
}

// Collections are the top level keys merged item by item. All other keys
// are overwritten when present.
var Collections = []string{"projects", "users", "allocations", "positions", "entities", "expenses", "scheduledRecords"}

// idNamespace is the namespace for IDs of items that are sent without one.
var idNamespace = uuid.MustParse("b0a8b3c4-4f7e-4a55-9f3a-6d3b7e0c9a12")

type item map[string]json.RawMessage

type document map[string]json.RawMessage

// Reconcile merges incoming into current and returns the merged document.
//
// For every collection:
//   - a missing or null key keeps the stored items
//   - a non-empty array is merged by item ID. Fields of incoming items
//     overwrite the stored fields, items that are not stored are added.
//     Stored items missing from the array are kept.
//   - an empty array replaces the stored items, unless the mode is
//     ModeStrict, items are stored and deletions are not allowed
//
// Items without an ID are given one derived from the whole incoming
// document, their content and their position in the array. Resending the
// same document yields the same IDs, while an identical item in a different
// document is added as a new item.
//
// Other keys are overwritten when they are present and not null.
func Reconcile(current, incoming []byte, opts Options) ([]byte, error) {
	cur, err := parse(current)
	if err != nil {
		return nil, fmt.Errorf("stored document: %w", err)
	}

	in, err := parse(incoming)
	if err != nil {
		return nil, err
	}
	namespace := uuid.NewSHA1(idNamespace, incoming)

	for key, value := range in {
		if isNull(value) {
			continue
		}

		if !slices.Contains(Collections, key) {
			cur[key] = value
			continue
		}

		incomingItems, err := parseItems(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, key)
		}

		storedItems, err := parseItems(cur[key])
		if err != nil {
			return nil, fmt.Errorf("stored document: %w: %s", err, key)
		}

		if len(incomingItems) == 0 {
			if opts.Mode == ModeStrict && len(storedItems) > 0 && !opts.AllowDeletions {
				return nil, fmt.Errorf("%w: %s", ErrStaleMergeDataLoss, key)
			}

			cur[key] = json.RawMessage("[]")
			continue
		}

		merged, err := mergeItems(storedItems, incomingItems, namespace)
		if err != nil {
			return nil, err
		}
		cur[key] = merged
	}

	return json.Marshal(cur)
}

func parse(b []byte) (document, error) {
	d := document{}
	if len(bytes.TrimSpace(b)) == 0 || isNull(b) {
		return d, nil
	}

	if err := json.Unmarshal(b, &d); err != nil {
		return nil, ErrInvalidDocument
	}

	return d, nil
}

func parseItems(raw json.RawMessage) ([]item, error) {
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}

	var items []item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrInvalidDocument
	}

	return items, nil
}

func mergeItems(stored, incoming []item, namespace uuid.UUID) (json.RawMessage, error) {
	var order []string
	byID := map[string]item{}
	var anonymous []item

	for _, it := range stored {
		id := idOf(it)
		if id == "" {
			anonymous = append(anonymous, it)
			continue
		}

		if _, ok := byID[id]; !ok {
			order = append(order, id)
		}
		byID[id] = it
	}

	for i, it := range incoming {
		id := idOf(it)
		if id == "" {
			generated, err := contentID(namespace, it, i)
			if err != nil {
				return nil, err
			}

			id = generated
			it["id"] = json.RawMessage(strconv.Quote(id))
		}

		existing, ok := byID[id]
		if !ok {
			order = append(order, id)
			byID[id] = it
			continue
		}

		for field, value := range it {
			existing[field] = value
		}
	}

	out := make([]item, 0, len(order)+len(anonymous))
	for _, id := range order {
		out = append(out, byID[id])
	}
	out = append(out, anonymous...)

	return json.Marshal(out)
}

// idOf returns the item's ID. Numeric IDs are used in their JSON form.
func idOf(it item) string {
	raw, ok := it["id"]
	if !ok || isNull(raw) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return string(bytes.TrimSpace(raw))
}

// contentID derives an ID for an item in the namespace of its document.
func contentID(namespace uuid.UUID, it item, position int) (string, error) {
	delete(it, "id")

	canonical, err := json.Marshal(it)
	if err != nil {
		return "", err
	}

	return uuid.NewSHA1(namespace, append(canonical, []byte(strconv.Itoa(position))...)).String(), nil
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
