// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package postalhttp builds the HTTP plumbing used by postal: clients and
transports from unmarshaled configuration, client middleware (headers,
request identifiers, logging, metrics), and the listen/serve lifecycle for
servers bound to an fx.App.
*/
package postalhttp
