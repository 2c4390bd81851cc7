package workflow

const (
	EntityReservation        EntityType = "reservation"
	EntityRepairOrder        EntityType = "repair_order"
	EntityLaundryOrder       EntityType = "laundry_order"
	EntityLegalCase          EntityType = "legal_case"
	EntityProject            EntityType = "project"
	EntityConsultation       EntityType = "consultation"
	EntityPhotoSession       EntityType = "photo_session"
	EntityClassBooking       EntityType = "class_booking"
	EntityDeskBooking        EntityType = "desk_booking"
	EntityEnrollment         EntityType = "enrollment"
	EntityPurchaseOrder      EntityType = "purchase_order"
	EntityTreatmentPlan      EntityType = "treatment_plan"
	EntitySubscription       EntityType = "subscription"
	EntityServiceRequest     EntityType = "service_request"
	EntityLabOrder           EntityType = "lab_order"
	EntityAdmission          EntityType = "admission"
	EntityMedicalComplaint   EntityType = "medical_complaint"
	EntityHousekeepingTask   EntityType = "housekeeping_task"
	EntityMaintenanceRequest EntityType = "maintenance_request"
)

func defaultWorkflows() []*Workflow {
	return []*Workflow{
		MustNew(EntityReservation,
			Active("confirmed", "checked_in", "cancelled", "no_show"),
			Active("checked_in", "checked_out"),
			Terminal("checked_out"),
			Terminal("cancelled"),
			Terminal("no_show"),
		),
		MustNew(EntityRepairOrder,
			Active("received", "diagnosed", "cancelled"),
			Active("diagnosed", "quoted", "cancelled"),
			Active("quoted", "approved", "cancelled"),
			Active("approved", "in_repair", "cancelled"),
			Active("in_repair", "completed", "cancelled"),
			Active("completed", "delivered"),
			Terminal("delivered"),
			Terminal("cancelled"),
		),
		// Ironing is optional and nothing can be cancelled once washing has started.
		MustNew(EntityLaundryOrder,
			Active("received", "processing", "cancelled"),
			Active("processing", "washing", "cancelled"),
			Active("washing", "drying"),
			Active("drying", "ironing", "ready"),
			Active("ironing", "ready"),
			Active("ready", "delivered"),
			Terminal("delivered"),
			Terminal("cancelled"),
		),
		// Hearings can be rescheduled back into active work; closed cases still get archived.
		MustNew(EntityLegalCase,
			Active("new", "in_progress", "closed"),
			Active("in_progress", "pending_hearing", "closed"),
			Active("pending_hearing", "in_progress", "closed"),
			Active("closed", "archived"),
			Terminal("archived"),
		),
		MustNew(EntityProject,
			Active("planning", "in_progress", "cancelled"),
			Active("in_progress", "on_hold", "review", "cancelled"),
			Active("on_hold", "in_progress", "cancelled"),
			Active("review", "in_progress", "completed"),
			Terminal("completed"),
			Terminal("cancelled"),
		),
		MustNew(EntityConsultation,
			Active("scheduled", "in_progress", "cancelled", "no_show"),
			Active("in_progress", "completed"),
			Terminal("completed"),
			Terminal("cancelled"),
			Terminal("no_show"),
		),
		MustNew(EntityPhotoSession,
			Active("booked", "confirmed", "cancelled"),
			Active("confirmed", "shooting", "cancelled", "no_show"),
			Active("shooting", "editing"),
			Active("editing", "delivered"),
			Terminal("delivered"),
			Terminal("cancelled"),
			Terminal("no_show"),
		),
		MustNew(EntityClassBooking,
			Active("waitlisted", "booked", "cancelled"),
			Active("booked", "attended", "cancelled", "no_show"),
			Terminal("attended"),
			Terminal("cancelled"),
			Terminal("no_show"),
		),
		MustNew(EntityDeskBooking,
			Active("reserved", "checked_in", "cancelled", "no_show"),
			Active("checked_in", "checked_out"),
			Terminal("checked_out"),
			Terminal("cancelled"),
			Terminal("no_show"),
		),
		MustNew(EntityEnrollment,
			Active("applied", "enrolled", "rejected", "withdrawn"),
			Active("enrolled", "active", "withdrawn"),
			Active("active", "suspended", "completed", "withdrawn"),
			Active("suspended", "active", "withdrawn"),
			Terminal("completed"),
			Terminal("rejected"),
			Terminal("withdrawn"),
		),
		MustNew(EntityPurchaseOrder,
			Active("draft", "submitted", "cancelled"),
			Active("submitted", "approved", "rejected", "cancelled"),
			Active("approved", "ordered", "cancelled"),
			Active("ordered", "partially_received", "received", "cancelled"),
			Active("partially_received", "received"),
			Active("received", "closed"),
			Terminal("closed"),
			Terminal("rejected"),
			Terminal("cancelled"),
		),
		MustNew(EntityTreatmentPlan,
			Active("draft", "proposed", "cancelled"),
			Active("proposed", "accepted", "rejected"),
			Active("accepted", "in_progress", "cancelled"),
			Active("in_progress", "on_hold", "completed"),
			Active("on_hold", "in_progress", "cancelled"),
			Terminal("completed"),
			Terminal("rejected"),
			Terminal("cancelled"),
		),
		MustNew(EntitySubscription,
			Active("trial", "active", "cancelled", "expired"),
			Active("active", "past_due", "paused", "cancelled", "expired"),
			Active("past_due", "active", "cancelled"),
			Active("paused", "active", "cancelled"),
			Terminal("cancelled"),
			Terminal("expired"),
		),
		// A resolved request may be reopened.
		MustNew(EntityServiceRequest,
			Active("open", "assigned", "cancelled"),
			Active("assigned", "in_progress", "cancelled"),
			Active("in_progress", "on_hold", "resolved"),
			Active("on_hold", "in_progress", "cancelled"),
			Active("resolved", "closed", "in_progress"),
			Terminal("closed"),
			Terminal("cancelled"),
		),
		MustNew(EntityLabOrder,
			Active("ordered", "sample_collected", "cancelled"),
			Active("sample_collected", "processing", "rejected"),
			Active("processing", "completed"),
			Active("completed", "reported"),
			Terminal("reported"),
			Terminal("rejected"),
			Terminal("cancelled"),
		),
		MustNew(EntityAdmission,
			Active("pending", "admitted", "cancelled"),
			Active("admitted", "in_treatment", "discharged", "transferred"),
			Active("in_treatment", "discharged", "transferred"),
			Terminal("discharged"),
			Terminal("transferred"),
			Terminal("cancelled"),
		),
		MustNew(EntityMedicalComplaint,
			Active("submitted", "reviewing", "dismissed"),
			Active("reviewing", "investigating", "resolved", "dismissed"),
			Active("investigating", "escalated", "resolved"),
			Active("escalated", "investigating", "resolved"),
			Active("resolved", "closed"),
			Terminal("closed"),
			Terminal("dismissed"),
		),
		// Failed inspection sends the task back to work.
		MustNew(EntityHousekeepingTask,
			Active("pending", "assigned", "cancelled"),
			Active("assigned", "in_progress", "cancelled"),
			Active("in_progress", "completed"),
			Active("completed", "inspected", "in_progress"),
			Terminal("inspected"),
			Terminal("cancelled"),
		),
		MustNew(EntityMaintenanceRequest,
			Active("reported", "acknowledged", "cancelled"),
			Active("acknowledged", "scheduled", "in_progress", "cancelled"),
			Active("scheduled", "in_progress", "cancelled"),
			Active("in_progress", "awaiting_parts", "completed"),
			Active("awaiting_parts", "in_progress"),
			Active("completed", "verified", "in_progress"),
			Terminal("verified"),
			Terminal("cancelled"),
		),
	}
}
