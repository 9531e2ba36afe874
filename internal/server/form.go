package server

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/orphaned-data/internal/bulk"
	"github.com/jonathan/orphaned-data/internal/listing"
)

var formValidator = validator.New()

// decodeBulkForm reads the action the listing form submitted. A row action
// button wins; otherwise the top selector wins unless it is left at "-1", in
// which case the bottom one is used together with its target select.
func decodeBulkForm(form url.Values) (bulk.Request, error) {
	var req bulk.Request

	if id := strings.TrimSpace(form.Get(listing.FieldRowDelete)); id != "" {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return bulk.Request{}, &ErrValidation{Field: listing.FieldRowDelete, Message: "not a post ID"}
		}
		req = bulk.Request{Action: bulk.ActionDelete, PostIDs: []int64{n}}
	} else {
		action, target := form.Get(listing.FieldAction), form.Get(listing.FieldTarget)
		if action == "" || action == listing.ActionNone {
			action, target = form.Get(listing.FieldAction2), form.Get(listing.FieldTarget2)
		}
		if action == listing.ActionNone {
			action = ""
		}
		req = bulk.Request{Action: action, TargetType: strings.TrimSpace(target)}

		for _, raw := range form[listing.FieldPostIDs] {
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return bulk.Request{}, &ErrValidation{Field: "post", Message: "not a post ID"}
			}
			req.PostIDs = append(req.PostIDs, n)
		}
	}

	if err := formValidator.Struct(req); err != nil {
		return bulk.Request{}, &ErrValidation{Field: "post", Message: extractValidationErrors(err)}
	}
	return req, nil
}
