package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	var o PartialOrder

	require.NoError(t, o.Set(PathLoadType, "grain"))
	require.NoError(t, o.Set(PathDeliveryLocality, "Rosario"))
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, o.Set(PathWithdrawalDate, day))

	v, err := o.Get(PathDeliveryLocality)
	require.NoError(t, err)
	require.Equal(t, "Rosario", v)
	require.Equal(t, LoadGrain, o.LoadType)
	require.Equal(t, day, *o.WithdrawalDate)

	require.NoError(t, o.Set(PathWithdrawalDate, nil))
	require.Nil(t, o.WithdrawalDate)

	require.ErrorIs(t, o.Set("delivery.zip", "2000"), ErrUnknownField)
	require.ErrorIs(t, o.Set(PathObservation, 3), ErrInvalidValue)
	_, err = o.Get("pickup.street")
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestSet_PhotosDoNotAliasCaller(t *testing.T) {
	var o PartialOrder
	photos := []Attachment{{Filename: "a.png", MimeType: MimePNG}}
	require.NoError(t, o.Set(PathPhotos, photos))

	photos[0].MimeType = "image/gif"
	require.Equal(t, MimePNG, o.Photos[0].MimeType)

	require.NoError(t, o.Set(PathPhotos, []Attachment{}))
	require.NotNil(t, o.Photos)
	require.Empty(t, o.Photos)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC)

	got, err := ParseDate("18-06-2024", DateLayoutDMY, time.UTC)
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = ParseDate("2024-06-18", DateLayoutDMY, time.UTC)
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = ParseDate("2024-06-18T22:30:00Z", DateLayoutYMD, time.UTC)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = ParseDate("mañana", DateLayoutYMD, time.UTC)
	require.Error(t, err)
}
