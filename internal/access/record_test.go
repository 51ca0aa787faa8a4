package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRecordReadsOwnershipColumns(t *testing.T) {
	db := setupAccessTestDB(t)

	creator := createUser(t, db, "record-creator")
	inv := createInvitation(t, db, creator.ID, "record-code")

	rec, err := loadRecord(context.Background(), db, "invitations", inv.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, inv.ID, rec.ID)
	require.Equal(t, creator.ID, rec.CreatedByUserID)
	require.Nil(t, rec.DeletedAt)

	email, ok := rec.StringField("email")
	require.True(t, ok)
	require.NotEmpty(t, email)

	deletedAt := time.Now().UTC()
	require.NoError(t, db.Model(inv).Update("deleted_at", deletedAt).Error)

	rec, err = loadRecord(context.Background(), db, "invitations", inv.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.DeletedAt)
}

func TestColumnCoercionUnwrapsPointerValues(t *testing.T) {
	// Drivers surface unrecognized column types as *interface{} through the
	// map scan; both coercions must look through the pointer.
	var wrapped interface{} = "some-uuid"
	require.Equal(t, "some-uuid", asString(&wrapped))

	var wrappedBytes interface{} = []byte("raw")
	require.Equal(t, "raw", asString(&wrappedBytes))

	var empty *interface{}
	require.Equal(t, "", asString(empty))
	require.Nil(t, asTime(empty))

	stamp := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	var wrappedTime interface{} = stamp
	got := asTime(&wrappedTime)
	require.NotNil(t, got)
	require.True(t, got.Equal(stamp))

	var wrappedText interface{} = stamp.Format(time.RFC3339Nano)
	got = asTime(&wrappedText)
	require.NotNil(t, got)
	require.True(t, got.Equal(stamp))
}
