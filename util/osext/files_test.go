/*
 * This file is part of the Mantik Project.
 * Copyright (c) 2020-2021 Mantik UG (Haftungsbeschränkt)
 * Authors: See AUTHORS file
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License version 3.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.
 *
 * Additionally, the following linking exception is granted:
 *
 * If you modify this Program, or any covered work, by linking or
 * combining it with other code, such other code is not for that reason
 * alone subject to any of the requirements of the GNU Affero GPL
 * version 3.
 *
 * You can be released from the requirements of the license by purchasing
 * a commercial license.
 */
package osext

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestFileExists(t *testing.T) {
	assert.True(t, FileExists("../../test/resources/nets"))           // directory
	assert.True(t, FileExists("../../test/resources/nets/tiny.yaml")) // file
	assert.False(t, FileExists("../../test/resources/nets/notexisting.yaml"))
}

func TestIsDirectory(t *testing.T) {
	assert.True(t, IsDirectory("../../test/resources/nets"))
	assert.False(t, IsDirectory("../../test/resources/nets/tiny.yaml"))
	assert.False(t, IsDirectory("../../test/resources/nets/notexisting.yaml"))
}
