// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package appfx holds the uber/fx and viper plumbing shared by the postal
commands and the postal.Provide module: unmarshaling configuration from
viper keys, conditional options, exit codes, and zap-backed fx logging.
*/
package appfx
