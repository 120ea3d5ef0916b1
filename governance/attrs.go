// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Attribute keys common to every proposal type
const (
	AttrCreator     = "creator"
	AttrFund        = "fund"
	AttrType        = "type"
	AttrTitle       = "title"
	AttrSummary     = "summary"
	AttrDescription = "description"
	AttrImage       = "image"
	AttrUrl         = "url"
)

// Attribute keys used by specific proposal types
const (
	AttrRecipient          = "recipient"
	AttrQuantity           = "quantity"
	AttrPayPercentages     = "payPercentages"
	AttrMaxAmountPerInvite = "maxAmountPerInvite"
	AttrPlanted            = "planted"
	AttrReward             = "reward"
	AttrSettingName        = "settingName"
	AttrNewValue           = "newValue"
	AttrTestCycles         = "testCycles"
	AttrEvalCycles         = "evalCycles"
)

// Auxiliary record keys written by the engine
const (
	auxPaid       = "paid"
	auxLocks      = "locks"
	auxCampaignId = "campaignId"
	auxPrevValue  = "prevValue"
	auxImpact     = "impact"
)

// Attrs is a string to variant map. Values arrive from JSON, so numbers may
// be float64, json.Number or decimal strings
type Attrs map[string]any

func (a Attrs) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

func (a Attrs) String(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingAttribute, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidAttribute, key)
	}
	return s, nil
}

func (a Attrs) Uint64(key string) (uint64, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingAttribute, key)
	}
	ret, err := toUint64(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidAttribute, key, err)
	}
	return ret, nil
}

// Uint64Or returns def when the key is absent
func (a Attrs) Uint64Or(key string, def uint64) (uint64, error) {
	if !a.Has(key) {
		return def, nil
	}
	return a.Uint64(key)
}

func (a Attrs) Decimal(key string) (decimal.Decimal, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingAttribute, key)
	}
	var ret decimal.Decimal
	var err error
	switch val := v.(type) {
	case decimal.Decimal:
		ret = val
	case string:
		ret, err = decimal.NewFromString(val)
	case json.Number:
		ret, err = decimal.NewFromString(val.String())
	case float64:
		ret = decimal.NewFromFloat(val)
	case int:
		ret = decimal.NewFromInt(int64(val))
	case int64:
		ret = decimal.NewFromInt(val)
	case uint64:
		ret = decimal.NewFromUint64(val)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %w", ErrInvalidAttribute, key, err)
	}
	return ret, nil
}

// Uint64List reads a list of unsigned integers
func (a Attrs) Uint64List(key string) ([]uint64, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case []uint64:
		return val, nil
	case []uint32:
		ret := make([]uint64, len(val))
		for i, x := range val {
			ret[i] = uint64(x)
		}
		return ret, nil
	case []int:
		items = make([]any, len(val))
		for i, x := range val {
			items[i] = x
		}
	case []string:
		items = make([]any, len(val))
		for i, x := range val {
			items[i] = x
		}
	default:
		return nil, fmt.Errorf(
			"%w: %s must be a list, got %T",
			ErrInvalidAttribute,
			key,
			v,
		)
	}
	ret := make([]uint64, 0, len(items))
	for _, item := range items {
		x, err := toUint64(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAttribute, key, err)
		}
		ret = append(ret, x)
	}
	return ret, nil
}

// Text validates a string attribute's length in characters
func (a Attrs) Text(key string, maxLen int) (string, error) {
	s, err := a.String(key)
	if err != nil {
		return "", err
	}
	n := utf8.RuneCountInString(s)
	if n < 1 || n > maxLen {
		return "", fmt.Errorf(
			"%w: %s has %d characters, allowed 1..%d",
			ErrTextLength,
			key,
			n,
			maxLen,
		)
	}
	return s, nil
}

func toUint64(v any) (uint64, error) {
	switch val := v.(type) {
	case uint64:
		return val, nil
	case uint32:
		return uint64(val), nil
	case uint:
		return uint64(val), nil
	case int:
		if val < 0 {
			return 0, fmt.Errorf("negative value %d", val)
		}
		return uint64(val), nil
	case int64:
		if val < 0 {
			return 0, fmt.Errorf("negative value %d", val)
		}
		return uint64(val), nil
	case float64:
		if val < 0 || val != math.Trunc(val) || val >= math.MaxUint64 {
			return 0, fmt.Errorf("not an unsigned integer: %v", val)
		}
		return uint64(val), nil
	case json.Number:
		return strconv.ParseUint(val.String(), 10, 64)
	case string:
		return strconv.ParseUint(strings.TrimSpace(val), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// formatUint stores large amounts as decimal strings so they survive a JSON
// round trip without losing precision
func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func formatUintList(vs []uint64) []string {
	ret := make([]string, len(vs))
	for i, v := range vs {
		ret[i] = formatUint(v)
	}
	return ret
}
