package queries_test

import (
	"testing"

	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetRouteQuery(t *testing.T) {
	id := kernel.NewUUID()
	query, err := queries.NewGetRouteQuery(id)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.Equal(t, id, query.RouteID())

	_, err = queries.NewGetRouteQuery(kernel.UUID{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	assert.ErrorIs(t, queries.GetRouteQuery{}.Validate(), queries.ErrGetRouteQueryIsNotConstructed)
}

func TestNewGetUndeliveredOrdersQuery(t *testing.T) {
	batchID := kernel.NewUUID()
	query := queries.NewGetUndeliveredOrdersQuery(&batchID)
	require.NoError(t, query.Validate())
	require.NotNil(t, query.BatchID())
	assert.Equal(t, batchID, *query.BatchID())

	assert.Nil(t, queries.NewGetUndeliveredOrdersQuery(nil).BatchID())
	assert.ErrorIs(t, queries.GetUndeliveredOrdersQuery{}.Validate(), queries.ErrGetUndeliveredOrdersQueryIsNotConstructed)
}

func TestNewGetActiveRouteByZoneQuery(t *testing.T) {
	query, err := queries.NewGetActiveRouteByZoneQuery(kernel.NewUUID())
	require.NoError(t, err)
	require.NoError(t, query.Validate())

	_, err = queries.NewGetActiveRouteByZoneQuery(kernel.UUID{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	assert.ErrorIs(t, queries.GetActiveRouteByZoneQuery{}.Validate(), queries.ErrGetActiveRouteByZoneQueryIsNotConstructed)
}

func TestNewGetAllDriversQuery(t *testing.T) {
	require.NoError(t, queries.NewGetAllDriversQuery().Validate())

	err := queries.GetAllDriversQuery{}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetAllDriversQueryIsNotConstructed)
}
