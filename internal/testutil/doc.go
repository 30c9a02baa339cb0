// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that build throwaway shader and
// solution trees and fail the test immediately on filesystem errors.
package testutil
