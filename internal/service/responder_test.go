package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/incident_dispatch_system/internal/models"
	"github.com/shenikar/incident_dispatch_system/internal/service/mocks"
	"github.com/shenikar/incident_dispatch_system/pkg/geo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestResponderService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestResponderService(t *testing.T) (ResponderService, *mocks.MockResponderRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockResponderRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	return NewResponderService(repoMock, logger), repoMock
}

func TestRegisterResponder_Success(t *testing.T) {
	// Подготовка
	service, repoMock := newTestResponderService(t)
	ctx := context.Background()

	lat, lon := 9.04, 38.75
	responder := &models.Responder{
		Name:          "Bole Clinic Unit",
		ResponderType: models.CategoryMedical,
		Latitude:      &lat,
		Longitude:     &lon,
		// Клиент не может сам себя одобрить и включить
		ApprovalStatus:     models.ApprovalApproved,
		AvailabilityStatus: models.AvailabilityAvailable,
		CurrentLoad:        7,
	}

	// Ожидания
	repoMock.EXPECT().
		Create(ctx, responder).
		DoAndReturn(func(_ context.Context, r *models.Responder) error {
			r.ID = uuid.New()
			return nil
		}).Times(1)

	// Действие
	err := service.RegisterResponder(ctx, responder)

	// Проверки: регистрация принудительно сбрасывает статусы
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, responder.ApprovalStatus)
	assert.Equal(t, models.AvailabilityUnavailable, responder.AvailabilityStatus)
	assert.Equal(t, 0, responder.CurrentLoad)
	assert.NotEqual(t, uuid.Nil, responder.ID)
}

func TestRegisterResponder_RepositoryError(t *testing.T) {
	// Подготовка
	service, repoMock := newTestResponderService(t)
	ctx := context.Background()

	responder := &models.Responder{
		Name:          "Unit",
		ResponderType: models.CategoryFire,
	}

	// Ожидания
	repoMock.EXPECT().
		Create(ctx, responder).
		Return(fmt.Errorf("connection refused")).
		Times(1)

	// Действие
	err := service.RegisterResponder(ctx, responder)

	// Проверки
	require.Error(t, err)
	assert.ErrorContains(t, err, "could not register responder")
}

func TestUpdateApproval_InvalidatesDirectoryCache(t *testing.T) {
	// Подготовка
	service, repoMock := newTestResponderService(t)
	ctx := context.Background()

	responder := &models.Responder{
		ID:            uuid.New(),
		Name:          "Unit",
		ResponderType: models.CategoryPolice,
	}

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, responder.ID).Return(responder, nil).Times(1)
	repoMock.EXPECT().UpdateApproval(ctx, responder.ID, models.ApprovalApproved).Return(nil).Times(1)
	repoMock.EXPECT().InvalidateEligibleCache(ctx, models.CategoryPolice).Return(nil).Times(1)

	// Действие
	err := service.UpdateApproval(ctx, responder.ID, models.ApprovalApproved)

	// Проверки
	require.NoError(t, err)
}

func TestUpdateApproval_ResponderNotFound(t *testing.T) {
	// Подготовка
	service, repoMock := newTestResponderService(t)
	ctx := context.Background()
	responderID := uuid.New()

	// Ожидания
	repoMock.EXPECT().
		GetByID(ctx, responderID).
		Return(nil, fmt.Errorf("responder with id %s: %w", responderID, ErrResponderNotFound)).
		Times(1)

	// Действие
	err := service.UpdateApproval(ctx, responderID, models.ApprovalRejected)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponderNotFound)
}

func TestUpdateApproval_CacheFailureIsNotFatal(t *testing.T) {
	// Подготовка: сбой кеша не откатывает уже обновленный статус
	service, repoMock := newTestResponderService(t)
	ctx := context.Background()

	responder := &models.Responder{
		ID:            uuid.New(),
		Name:          "Unit",
		ResponderType: models.CategoryTraffic,
	}

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, responder.ID).Return(responder, nil).Times(1)
	repoMock.EXPECT().UpdateApproval(ctx, responder.ID, models.ApprovalApproved).Return(nil).Times(1)
	repoMock.EXPECT().
		InvalidateEligibleCache(ctx, models.CategoryTraffic).
		Return(fmt.Errorf("redis: connection refused")).
		Times(1)

	// Действие
	err := service.UpdateApproval(ctx, responder.ID, models.ApprovalApproved)

	// Проверки
	require.NoError(t, err)
}

func TestUpdateLocation_InvalidatesDirectoryCache(t *testing.T) {
	// Подготовка: кеш каталога хранит координаты кандидатов,
	// после перемещения он обязан сбрасываться
	service, repoMock := newTestResponderService(t)
	ctx := context.Background()

	responder := &models.Responder{
		ID:            uuid.New(),
		Name:          "Unit",
		ResponderType: models.CategoryMedical,
	}

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, responder.ID).Return(responder, nil).Times(1)
	repoMock.EXPECT().UpdateLocation(ctx, responder.ID, 9.04, 38.75).Return(nil).Times(1)
	repoMock.EXPECT().InvalidateEligibleCache(ctx, models.CategoryMedical).Return(nil).Times(1)

	// Действие
	err := service.UpdateLocation(ctx, responder.ID, 9.04, 38.75)

	// Проверки
	require.NoError(t, err)
}

func TestUpdateLocation_ResponderNotFound(t *testing.T) {
	// Подготовка
	service, repoMock := newTestResponderService(t)
	ctx := context.Background()
	responderID := uuid.New()

	// Ожидания
	repoMock.EXPECT().
		GetByID(ctx, responderID).
		Return(nil, fmt.Errorf("responder with id %s: %w", responderID, ErrResponderNotFound)).
		Times(1)

	// Действие
	err := service.UpdateLocation(ctx, responderID, 9.04, 38.75)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponderNotFound)
}

func TestUpdateLocation_CacheFailureIsNotFatal(t *testing.T) {
	// Подготовка: сбой кеша не откатывает уже сохраненные координаты
	service, repoMock := newTestResponderService(t)
	ctx := context.Background()

	responder := &models.Responder{
		ID:            uuid.New(),
		Name:          "Unit",
		ResponderType: models.CategoryFire,
	}

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, responder.ID).Return(responder, nil).Times(1)
	repoMock.EXPECT().UpdateLocation(ctx, responder.ID, 9.04, 38.75).Return(nil).Times(1)
	repoMock.EXPECT().
		InvalidateEligibleCache(ctx, models.CategoryFire).
		Return(fmt.Errorf("redis: connection refused")).
		Times(1)

	// Действие
	err := service.UpdateLocation(ctx, responder.ID, 9.04, 38.75)

	// Проверки
	require.NoError(t, err)
}

func TestUpdateLocation_InvalidCoordinates(t *testing.T) {
	// Подготовка: битые координаты отклоняются до обращения к бд
	service, _ := newTestResponderService(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		lat  float64
		lon  float64
	}{
		{name: "NaN latitude", lat: math.NaN(), lon: 38.75},
		{name: "NaN longitude", lat: 9.04, lon: math.NaN()},
		{name: "Inf latitude", lat: math.Inf(-1), lon: 38.75},
		{name: "Inf longitude", lat: 9.04, lon: math.Inf(1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Действие
			err := service.UpdateLocation(ctx, uuid.New(), tc.lat, tc.lon)

			// Проверки
			require.Error(t, err)
			assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
		})
	}
}
