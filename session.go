package otfmaturity

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/nsip/otf-maturity/internal/export"
	"github.com/nsip/otf-maturity/internal/scoring"
	"github.com/tidwall/gjson"
)

//
// everything a single assessment run needs, built from one
// request and handed to the scoring engine
//
type Session struct {
	Participant   export.Participant
	Questionnaire *questionnaire
	Ratings       scoring.Ratings
}

func (s *Session) Score() scoring.Result {
	return scoring.Score(s.Questionnaire.Rows, s.Ratings)
}

// the request payload is not acceptable
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

//
// builds a session from a json payload of the form
//
//	{
//	  "modelId": "url:https://...",
//	  "participant": {"name": "", "email": "", "group": ""},
//	  "ratings": [{"pillar": "", "code": "", "level": 4}],
//	  "applyDefaults": false
//	}
//
// ratings may also be given as an object keyed "pillar::code".
//
func (s *OtfMaturityService) newSession(ctx context.Context, body []byte) (*Session, error) {
	if !gjson.ValidBytes(body) {
		return nil, badRequest("request body is not valid json")
	}
	req := gjson.ParseBytes(body)

	q, err := s.questionnaire(ctx, req.Get("modelId").String())
	if err != nil {
		return nil, err
	}

	known := map[scoring.Key]bool{}
	for _, r := range q.Rows {
		known[scoring.KeyOf(r)] = true
	}

	sess := &Session{
		Participant: export.Participant{
			Name:  strings.TrimSpace(req.Get("participant.name").String()),
			Email: strings.TrimSpace(req.Get("participant.email").String()),
			Group: strings.TrimSpace(req.Get("participant.group").String()),
		},
		Questionnaire: q,
		Ratings:       scoring.Ratings{},
	}

	var rerr error
	add := func(k scoring.Key, lv gjson.Result) bool {
		if !lv.Exists() || lv.Type == gjson.Null {
			return true
		}
		if !known[k] {
			rerr = badRequest("unknown requirement %s::%s", k.Pillar, k.Code)
			return false
		}
		v, ok := ratingValue(lv)
		if !ok {
			rerr = badRequest("rating for %s::%s must be a whole number from %d to %d", k.Pillar, k.Code, scoring.MinRating, scoring.MaxRating)
			return false
		}
		sess.Ratings[k] = v
		return true
	}

	ratings := req.Get("ratings")
	switch {
	case ratings.IsArray():
		ratings.ForEach(func(_, r gjson.Result) bool {
			return add(scoring.Key{Pillar: r.Get("pillar").String(), Code: r.Get("code").String()}, r.Get("level"))
		})
	case ratings.IsObject():
		ratings.ForEach(func(key, lv gjson.Result) bool {
			parts := strings.SplitN(key.String(), "::", 2)
			if len(parts) != 2 {
				rerr = badRequest("rating key %q is not of the form pillar::code", key.String())
				return false
			}
			return add(scoring.Key{Pillar: parts[0], Code: parts[1]}, lv)
		})
	case ratings.Exists() && ratings.Type != gjson.Null:
		return nil, badRequest("ratings must be an array or an object")
	}
	if rerr != nil {
		return nil, rerr
	}

	if req.Get("applyDefaults").Bool() {
		sess.Ratings = sess.Ratings.WithDefaults(q.Rows, scoring.DefaultRating)
	}

	return sess, nil
}

func ratingValue(lv gjson.Result) (int, bool) {
	if lv.Type != gjson.Number {
		return 0, false
	}
	f := lv.Float()
	if f != math.Trunc(f) || f < scoring.MinRating || f > scoring.MaxRating {
		return 0, false
	}
	return int(f), true
}
