// SPDX-License-Identifier: MPL-2.0

// Package platform centralizes operating-system specific naming rules.
package platform
