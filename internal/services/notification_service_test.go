package services

import (
	"testing"

	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchHonorsStoredPreferences(t *testing.T) {
	env := newTestEnv()
	provider := env.addUser("Provider", models.UserRoleProvider)
	student := env.addUser("Student", models.UserRoleStudent)
	gig := env.addGig(provider.ID, models.ApprovalStatusApproved, models.GigStatusOpen)
	application := env.addApplication(gig.ID, student.ID, models.ApplicationStatusPending)

	// The provider turns off email for new applications.
	off := false
	_, err := env.notificationService.UpdatePreference(provider.ID, &dto.PreferenceUpdateRequest{
		NotificationType: models.NotificationTypeApplicationReceived,
		EmailEnabled:     &off,
	})
	require.NoError(t, err)

	require.NoError(t, env.notificationService.NotifyApplicationReceived(gig, application, "Student"))

	unread, err := env.notices.UnreadCount(provider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	assert.Empty(t, env.queue.emailsFor(provider.ID))
	assert.Len(t, env.queue.pushesFor(provider.ID), 1)
}

func TestDispatchBuiltInDefaults(t *testing.T) {
	env := newTestEnv()
	provider := env.addUser("Provider", models.UserRoleProvider)
	student := env.addUser("Student", models.UserRoleStudent)
	gig := env.addGig(provider.ID, models.ApprovalStatusApproved, models.GigStatusOpen)

	// gig_update defaults to email off, push and in-app on.
	require.NoError(t, env.notificationService.NotifyGigUpdate([]string{student.ID}, gig, "changed"))

	unread, err := env.notices.UnreadCount(student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	assert.Empty(t, env.queue.emailsFor(student.ID))
	assert.Len(t, env.queue.pushesFor(student.ID), 1)
}

func TestDispatchUnknownTypeEnablesAllChannels(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("Admin", models.UserRoleAdmin)
	user := env.addUser("Someone", models.UserRoleStudent)

	result, err := env.notificationService.SendBulkNotification(admin.ID, &dto.SendBulkNotificationRequest{
		UserIDs: []string{user.ID},
		Type:    "maintenance_window",
		Title:   "Maintenance",
		Message: "Back at noon",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalUsers)
	assert.Equal(t, 1, result.InAppSent)
	assert.Equal(t, 1, result.EmailsQueued)
	assert.Equal(t, 1, result.PushQueued)
	assert.Empty(t, result.Errors)

	assert.Len(t, env.queue.emailsFor(user.ID), 1)
	assert.Len(t, env.queue.pushesFor(user.ID), 1)
}

func TestSendBulkNotificationHonorsPreferencesAndAudits(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("Admin", models.UserRoleAdmin)
	alice := env.addUser("Alice", models.UserRoleStudent)
	bob := env.addUser("Bob", models.UserRoleStudent)

	// rating_warning defaults to push on; Bob turns it off.
	off := false
	_, err := env.notificationService.UpdatePreference(bob.ID, &dto.PreferenceUpdateRequest{
		NotificationType: models.NotificationTypeRatingWarning,
		PushEnabled:      &off,
	})
	require.NoError(t, err)

	result, err := env.notificationService.SendBulkNotification(admin.ID, &dto.SendBulkNotificationRequest{
		UserIDs: []string{alice.ID, bob.ID},
		Type:    models.NotificationTypeRatingWarning,
		Title:   "Review your conduct",
		Message: "A moderator flagged one of your ratings",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalUsers)
	assert.Equal(t, 2, result.InAppSent)
	assert.Equal(t, 1, result.PushQueued)
	assert.Empty(t, result.Errors)

	assert.Len(t, env.queue.pushesFor(alice.ID), 1)
	assert.Empty(t, env.queue.pushesFor(bob.ID))

	assert.Contains(t, env.audit.actions(), "bulk_notification_sent")
}

func TestSendBulkNotificationReportsUnknownRecipients(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("Admin", models.UserRoleAdmin)
	user := env.addUser("User", models.UserRoleStudent)

	result, err := env.notificationService.SendBulkNotification(admin.ID, &dto.SendBulkNotificationRequest{
		UserIDs: []string{user.ID, "missing-id"},
		Type:    "maintenance_window",
		Title:   "Maintenance",
		Message: "Back at noon",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalUsers)
	assert.Equal(t, 1, result.InAppSent)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "missing-id")
}

func TestDispatchSkipsEmailForUserWithoutAddress(t *testing.T) {
	env := newTestEnv()
	provider := env.addUser("Provider", models.UserRoleProvider)
	provider.Email = ""
	require.NoError(t, env.users.Update(provider))

	student := env.addUser("Student", models.UserRoleStudent)
	gig := env.addGig(provider.ID, models.ApprovalStatusApproved, models.GigStatusOpen)
	application := env.addApplication(gig.ID, student.ID, models.ApplicationStatusPending)

	// application_received defaults email on, but there is no address.
	require.NoError(t, env.notificationService.NotifyApplicationReceived(gig, application, "Student"))

	unread, err := env.notices.UnreadCount(provider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	assert.Empty(t, env.queue.emailsFor(provider.ID))
}

func TestMarkAsReadOwnershipAndIdempotence(t *testing.T) {
	env := newTestEnv()
	provider := env.addUser("Provider", models.UserRoleProvider)
	stranger := env.addUser("Stranger", models.UserRoleStudent)
	student := env.addUser("Student", models.UserRoleStudent)
	gig := env.addGig(provider.ID, models.ApprovalStatusApproved, models.GigStatusOpen)
	application := env.addApplication(gig.ID, student.ID, models.ApplicationStatusPending)

	require.NoError(t, env.notificationService.NotifyApplicationReceived(gig, application, "Student"))

	list, _, err := env.notices.ListForUser(provider.ID, repositories.NotificationCriteria{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	notificationID := list[0].ID

	// Someone else's notification cannot be marked.
	err = env.notificationService.MarkAsRead(stranger.ID, notificationID)
	require.Error(t, err)

	require.NoError(t, env.notificationService.MarkAsRead(provider.ID, notificationID))
	// Marking twice is a no-op.
	require.NoError(t, env.notificationService.MarkAsRead(provider.ID, notificationID))

	unread, err := env.notificationService.GetUnreadCount(provider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestMarkAllAsReadReturnsCount(t *testing.T) {
	env := newTestEnv()
	provider := env.addUser("Provider", models.UserRoleProvider)
	student := env.addUser("Student", models.UserRoleStudent)
	gig := env.addGig(provider.ID, models.ApprovalStatusApproved, models.GigStatusOpen)
	application := env.addApplication(gig.ID, student.ID, models.ApplicationStatusPending)

	require.NoError(t, env.notificationService.NotifyApplicationReceived(gig, application, "A"))
	require.NoError(t, env.notificationService.NotifyGigUpdate([]string{provider.ID}, gig, "changed"))

	updated, err := env.notificationService.MarkAllAsRead(provider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	// Nothing left to mark the second time.
	updated, err = env.notificationService.MarkAllAsRead(provider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestGetPreferencesSeedsDefaults(t *testing.T) {
	env := newTestEnv()
	user := env.addUser("User", models.UserRoleStudent)

	prefs, err := env.notificationService.GetPreferences(user.ID)
	require.NoError(t, err)
	assert.Len(t, prefs, len(models.DefaultPreferences(user.ID)))
}

func TestUpdatePreferencePatchesOnlyGivenFields(t *testing.T) {
	env := newTestEnv()
	user := env.addUser("User", models.UserRoleStudent)

	off := false
	resp, err := env.notificationService.UpdatePreference(user.ID, &dto.PreferenceUpdateRequest{
		NotificationType: models.NotificationTypeApplicationStatus,
		PushEnabled:      &off,
	})
	require.NoError(t, err)
	assert.False(t, resp.PushEnabled)
	// Untouched channels keep their defaults.
	assert.True(t, resp.EmailEnabled)
	assert.True(t, resp.InAppEnabled)

	stored, err := env.prefs.FindByUserAndType(user.ID, models.NotificationTypeApplicationStatus)
	require.NoError(t, err)
	assert.False(t, stored.PushEnabled)
}

func TestUpdateBulkPreferencesRoundTrip(t *testing.T) {
	env := newTestEnv()
	user := env.addUser("User", models.UserRoleStudent)

	off := false
	on := true
	prefs, err := env.notificationService.UpdateBulkPreferences(user.ID, &dto.BulkPreferenceUpdateRequest{
		Preferences: []dto.PreferenceUpdateRequest{
			{NotificationType: models.NotificationTypeApplicationStatus, PushEnabled: &off},
			{NotificationType: models.NotificationTypeGigUpdate, EmailEnabled: &on},
		},
	})
	require.NoError(t, err)
	require.Len(t, prefs, len(models.DefaultPreferences(user.ID)))

	byType := map[string]dto.PreferenceResponse{}
	for _, p := range prefs {
		byType[p.NotificationType] = p
	}

	assert.False(t, byType[models.NotificationTypeApplicationStatus].PushEnabled)
	assert.True(t, byType[models.NotificationTypeApplicationStatus].EmailEnabled)
	assert.True(t, byType[models.NotificationTypeGigUpdate].EmailEnabled)

	// Types not named in the batch keep their defaults.
	assert.True(t, byType[models.NotificationTypeApplicationReceived].PushEnabled)
	assert.True(t, byType[models.NotificationTypeApplicationReceived].EmailEnabled)

	// A second read returns the same settings.
	again, err := env.notificationService.GetPreferences(user.ID)
	require.NoError(t, err)
	for _, p := range again {
		assert.Equal(t, byType[p.NotificationType], p)
	}
}

func TestGetSummary(t *testing.T) {
	env := newTestEnv()
	provider := env.addUser("Provider", models.UserRoleProvider)
	gig := env.addGig(provider.ID, models.ApprovalStatusApproved, models.GigStatusOpen)

	for i := 0; i < 7; i++ {
		require.NoError(t, env.notificationService.NotifyGigUpdate([]string{provider.ID}, gig, "change"))
	}

	summary, err := env.notificationService.GetSummary(provider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), summary.UnreadCount)
	assert.Len(t, summary.Recent, 5)
}
