//go:build api

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"carpool/internal/archive"
	"carpool/test/api/testserver"
	"carpool/test/fixtures"
	"carpool/test/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDayRollover checks that yesterday's board disappears and lands in the
// archive bucket.
func TestDayRollover(t *testing.T) {
	readArchive := func(t *testing.T, day string) archive.Document {
		t.Helper()
		keys := testServer.WaitForArchive(t, archive.KeyPrefix+"/"+day+"/")
		require.Len(t, keys, 1)

		body, err := testServer.MinIO.Object(context.Background(), keys[0])
		require.NoError(t, err)

		var doc archive.Document
		require.NoError(t, json.Unmarshal(body, &doc))
		return doc
	}

	t.Run("running server archives at the first request of the next day", func(t *testing.T) {
		testServer.CleanupBetweenTests(t)
		auth := testserver.NewAuthHelper(testServer)
		rides := testserver.NewRideHelper(testServer)

		driver := auth.Token(t, "E1001")
		rider := auth.Token(t, "E1002")
		ride := rides.Offer(t, driver, fixtures.NewRide().Build())
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPost, "/api/v1/rides/"+ride.ID+"/book", rider, nil)
		require.Equal(t, http.StatusOK, w.Code)

		testServer.Clock.Advance(24 * time.Hour)

		assert.Empty(t, rides.List(t, rider, "/api/v1/rides"))

		doc := readArchive(t, "2024-01-15")
		assert.Equal(t, "2024-01-15", doc.Day)
		require.Len(t, doc.Rides, 1)
		assert.Equal(t, ride.ID, doc.Rides[0].ID)
		assert.Equal(t, []string{"E1002"}, doc.Rides[0].BookedBy)

		t.Run("employee may offer again", func(t *testing.T) {
			rides.Offer(t, driver, fixtures.NewRide().Build())
		})
	})

	t.Run("restart on a later day archives the stored board", func(t *testing.T) {
		testServer.CleanupBetweenTests(t)
		auth := testserver.NewAuthHelper(testServer)
		rides := testserver.NewRideHelper(testServer)

		driver := auth.Token(t, "E1001")
		rides.Offer(t, driver, fixtures.NewRide().Build())

		testServer.Clock.Advance(48 * time.Hour)
		testServer.Restart(t)

		doc := readArchive(t, "2024-01-15")
		assert.Len(t, doc.Rides, 1)

		// accounts are not day-scoped
		resp := auth.LogIn(t, "E1001")
		assert.Empty(t, rides.List(t, resp.AccessToken, "/api/v1/rides"))
	})
}
