// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package postaltest holds test support for clients of a post collection:
// mocked transports, an in-process backend, and a transport that holds
// requests until a test releases them.
package postaltest
