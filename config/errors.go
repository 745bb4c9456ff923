// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

// ErrInvalid covers duplicate channel numbers, out-of-range bus
// references, slot/action conflicts, and multiple click channels.
// Fatal, pre-extraction.
var ErrInvalid = errors.New("invalid configuration")
