package db_test

import (
	"testing"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/testutil"
	"campusfeed/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	gdb := testutil.SetupDB(t)

	db.Seed(gdb, "Admin@Campus.edu", "secret1")
	db.Seed(gdb, "Admin@Campus.edu", "secret1")

	var categories int64
	gdb.Model(&models.Category{}).Count(&categories)
	assert.Equal(t, int64(4), categories)

	var admins []models.User
	require.NoError(t, gdb.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, utils.CheckPasswordHash("secret1", admins[0].Password))
}

func TestSeedWithoutAdminCredentials(t *testing.T) {
	gdb := testutil.SetupDB(t)
	db.Seed(gdb, "", "")

	var users int64
	gdb.Model(&models.User{}).Count(&users)
	assert.Zero(t, users)
}
