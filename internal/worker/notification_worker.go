package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartNotificationWorker registers the ops notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
