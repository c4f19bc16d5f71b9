package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Client       ClientRepository
	Lead         LeadRepository
	Project      ProjectRepository
	Block        BlockRepository
	Lot          LotRepository
	Quotation    QuotationRepository
	Reservation  ReservationRepository
	Payment      PaymentRepository
	Notification NotificationRepository
	Dashboard    DashboardRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Client:       NewClientRepository(db),
		Lead:         NewLeadRepository(db),
		Project:      NewProjectRepository(db),
		Block:        NewBlockRepository(db),
		Lot:          NewLotRepository(db),
		Quotation:    NewQuotationRepository(db),
		Reservation:  NewReservationRepository(db),
		Payment:      NewPaymentRepository(db),
		Notification: NewNotificationRepository(db),
		Dashboard:    NewDashboardRepository(db),
	}
}
