package usecase

import (
	"context"

	"lab-booking/internal/converter"
	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"
	"lab-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AdminUserUsecase interface {
	ListUsers(ctx context.Context, actor entity.Actor) (*dto.AdminUserListResponse, error)
	GetUserBookings(ctx context.Context, actor entity.Actor, userID uuid.UUID) (*dto.BookingListResponse, error)
}

type adminUserUsecase struct {
	tx          repository.Transactor
	log         *logrus.Logger
	userRepo    repository.UserRepository
	bookingRepo repository.BookingRepository
}

func NewAdminUserUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	bookingRepo repository.BookingRepository,
) AdminUserUsecase {
	return &adminUserUsecase{
		tx:          tx,
		log:         log,
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
	}
}

func (u *adminUserUsecase) ListUsers(ctx context.Context, actor entity.Actor) (*dto.AdminUserListResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	users, err := u.userRepo.FindAllWithBookingCount(ctx, u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find users: %+v", err)
		return nil, err
	}

	return &dto.AdminUserListResponse{
		Users: converter.UsersWithBookingCountToResponses(users),
		Total: len(users),
	}, nil
}

func (u *adminUserUsecase) GetUserBookings(ctx context.Context, actor entity.Actor, userID uuid.UUID) (*dto.BookingListResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	conn := u.tx.Conn(ctx)
	user, err := u.userRepo.FindByID(ctx, conn, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	bookings, err := u.bookingRepo.FindByUserID(ctx, conn, userID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}
