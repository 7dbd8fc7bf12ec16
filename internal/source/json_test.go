package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlexibleID(t *testing.T) {
	t.Parallel()

	var rows []struct {
		ID FlexibleID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`[{"id":42},{"id":"abc "},{"id":null},{"id":-7613018771850097000}]`), &rows))
	require.Equal(t, "42", rows[0].ID.String())
	require.Equal(t, "abc", rows[1].ID.String())
	require.Empty(t, rows[2].ID)
	require.Equal(t, "-7613018771850097000", rows[3].ID.String())

	var bad struct {
		ID FlexibleID `json:"id"`
	}
	require.Error(t, json.Unmarshal([]byte(`{"id":{}}`), &bad))
}

func TestDecodeList(t *testing.T) {
	t.Parallel()

	type row struct {
		Title string `json:"title"`
	}

	arr, err := DecodeList[row]([]byte(` [{"title":"a"}]`), "data", "jobs")
	require.NoError(t, err)
	require.Equal(t, []row{{"a"}}, arr)

	arr, err = DecodeList[row]([]byte(`{"data":[{"title":"b"}]}`), "data", "jobs")
	require.NoError(t, err)
	require.Equal(t, []row{{"b"}}, arr)

	arr, err = DecodeList[row]([]byte(`{"totalCount":1,"data":[],"jobs":[{"title":"c"}]}`), "data", "jobs")
	require.NoError(t, err)
	require.Equal(t, []row{{"c"}}, arr)

	arr, err = DecodeList[row]([]byte(`{"totalCount":0}`), "data", "jobs")
	require.NoError(t, err)
	require.Empty(t, arr)

	_, err = DecodeList[row]([]byte(`"nope"`), "data")
	require.Error(t, err)
}
