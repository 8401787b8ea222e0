package handler

import (
	"renovation/internal/app/ds"
	"renovation/internal/app/dto"
	"renovation/internal/app/pricing"
	"renovation/internal/app/repository"
	"renovation/internal/app/wizard"
)

func toUserResponse(u *ds.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID,
		Login:    u.Login,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     int(u.Role),
		RoleName: u.Role.String(),
	}
}

func toProjectResponse(p *ds.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		ClientName:    p.ClientName,
		ClientEmail:   p.ClientEmail,
		Address:       p.Address,
		Status:        p.Status,
		DefaultMarkup: p.DefaultMarkup,
		Budget:        p.Budget,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		OwnerID:       p.OwnerID,
		CreatedAt:     p.CreatedAt,
	}
}

// candidateFromItem is how the invoice wizard sees an FFE item.
func candidateFromItem(item repository.PricedSpecItem) wizard.Candidate {
	return wizard.Candidate{
		SpecItemID:     item.ID,
		Name:           item.Name,
		Room:           item.Room,
		Quantity:       item.Quantity,
		CostPrice:      item.CostPrice,
		Markup:         item.EffectiveMarkup,
		RRP:            item.RRP,
		ClientApproved: item.ClientApproved,
	}
}

func toSpecItemResponse(item repository.PricedSpecItem, imageURL string) dto.SpecItemResponse {
	resp := dto.SpecItemResponse{
		ID:              item.ID,
		ProjectID:       item.ProjectID,
		Name:            item.Name,
		Room:            item.Room,
		Category:        item.Category,
		Description:     item.Description,
		SupplierID:      item.SupplierID,
		Quantity:        item.Quantity,
		Unit:            item.Unit,
		CostPrice:       item.CostPrice,
		Markup:          item.Markup,
		EffectiveMarkup: item.EffectiveMarkup,
		RRP:             item.RRP,
		SellingPrice:    item.SellingPrice,
		TotalPrice:      item.TotalPrice,
		Margin:          item.Margin,
		Status:          item.Status,
		ClientApproved:  item.ClientApproved,
		Selectable:      candidateFromItem(item).Selectable(),
		ImageURL:        imageURL,
		LeadTimeDays:    item.LeadTimeDays,
	}
	if item.Supplier != nil {
		resp.SupplierName = item.Supplier.Name
	}
	return resp
}

func toSupplierResponse(s *ds.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		ContactName: s.ContactName,
		Email:       s.Email,
		Phone:       s.Phone,
		Website:     s.Website,
		Address:     s.Address,
		Notes:       s.Notes,
	}
}

func toRFQResponse(r *ds.RFQ) dto.RFQResponse {
	resp := dto.RFQResponse{
		ID:        r.ID,
		Number:    r.Number,
		ProjectID: r.ProjectID,
		Title:     r.Title,
		Notes:     r.Notes,
		Status:    r.Status,
		DueDate:   r.DueDate,
		SentAt:    r.SentAt,
		CreatedAt: r.CreatedAt,
	}
	for _, it := range r.Items {
		resp.Items = append(resp.Items, dto.RFQItemResponse{
			ID:          it.ID,
			SpecItemID:  it.SpecItemID,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
		})
	}
	for _, s := range r.Suppliers {
		resp.Suppliers = append(resp.Suppliers, dto.RFQSupplierResponse{
			SupplierID:     s.SupplierID,
			Name:           s.Supplier.Name,
			Email:          s.Supplier.Email,
			DeliveryStatus: s.DeliveryStatus,
			DeliveryError:  s.DeliveryError,
			SentAt:         s.SentAt,
		})
	}
	return resp
}

func toSupplierQuoteResponse(q *ds.SupplierQuote) dto.SupplierQuoteResponse {
	resp := dto.SupplierQuoteResponse{
		ID:           q.ID,
		RFQID:        q.RFQID,
		SupplierID:   q.SupplierID,
		SupplierName: q.Supplier.Name,
		Status:       q.Status,
		ValidUntil:   q.ValidUntil,
		LeadTimeDays: q.LeadTimeDays,
		Notes:        q.Notes,
		Total:        q.Total,
		ReceivedAt:   q.ReceivedAt,
	}
	for _, it := range q.Items {
		resp.Items = append(resp.Items, dto.SupplierQuoteItemResponse{
			RFQItemID:   it.RFQItemID,
			Description: it.RFQItem.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return resp
}

func toComparisonResponse(rows []repository.ComparisonRow) []dto.ComparisonRowResponse {
	out := make([]dto.ComparisonRowResponse, len(rows))
	for i, row := range rows {
		offers := make([]dto.ComparisonOfferResponse, len(row.Offers))
		for j, o := range row.Offers {
			offers[j] = dto.ComparisonOfferResponse{
				SupplierQuoteID: o.SupplierQuoteID,
				SupplierID:      o.SupplierID,
				SupplierName:    o.SupplierName,
				UnitPrice:       o.UnitPrice,
				TotalPrice:      o.TotalPrice,
			}
		}
		out[i] = dto.ComparisonRowResponse{
			RFQItemID:      row.RFQItemID,
			Description:    row.Description,
			Quantity:       row.Quantity,
			Offers:         offers,
			BestSupplierID: row.BestSupplierID,
			BestUnitPrice:  row.BestUnitPrice,
		}
	}
	return out
}

func toOrderResponse(o *ds.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:               o.ID,
		Number:           o.Number,
		ProjectID:        o.ProjectID,
		SupplierID:       o.SupplierID,
		SupplierName:     o.Supplier.Name,
		SupplierQuoteID:  o.SupplierQuoteID,
		Status:           o.Status,
		OrderDate:        o.OrderDate,
		ExpectedDelivery: o.ExpectedDelivery,
		SentAt:           o.SentAt,
		ConfirmedAt:      o.ConfirmedAt,
		ReceivedAt:       o.ReceivedAt,
		ShippingCost:     o.ShippingCost,
		Subtotal:         o.Subtotal,
		GSTAmount:        o.GSTAmount,
		QSTAmount:        o.QSTAmount,
		Total:            o.Total,
		Notes:            o.Notes,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:               it.ID,
			SpecItemID:       it.SpecItemID,
			Description:      it.Description,
			Quantity:         it.Quantity,
			ReceivedQuantity: it.ReceivedQuantity,
			UnitPrice:        it.UnitPrice,
			TotalPrice:       it.TotalPrice,
		})
	}
	return resp
}

func toPaymentResponse(p *ds.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:         p.ID,
		LineItemID: p.LineItemID,
		Amount:     p.Amount,
		Method:     p.Method,
		Reference:  p.Reference,
		PaidAt:     p.PaidAt,
	}
}

func toClientQuoteResponse(q *ds.ClientQuote) dto.ClientQuoteResponse {
	resp := dto.ClientQuoteResponse{
		ID:          q.ID,
		Number:      q.Number,
		ProjectID:   q.ProjectID,
		ProjectName: q.Project.Name,
		Title:       q.Title,
		Description: q.Description,
		Status:      q.Status,
		IssueDate:   q.IssueDate,
		DueDate:     q.DueDate,
		ValidUntil:  q.ValidUntil,
		Charges:     q.Charges,
		Subtotal:    q.Subtotal,
		GSTRate:     q.GSTRate,
		QSTRate:     q.QSTRate,
		GSTAmount:   q.GSTAmount,
		QSTAmount:   q.QSTAmount,
		Total:       q.Total,
		AmountPaid:  q.AmountPaid,
		Balance:     pricing.Balance(q.Total, q.AmountPaid),
		Notes:       q.Notes,
		SentAt:      q.SentAt,
		ApprovedAt:  q.ApprovedAt,
	}
	for _, l := range q.LineItems {
		resp.LineItems = append(resp.LineItems, dto.LineItemResponse{
			ID:           l.ID,
			SpecItemID:   l.SpecItemID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			CostPrice:    l.CostPrice,
			Markup:       l.Markup,
			SellingPrice: l.SellingPrice,
			TotalPrice:   l.TotalPrice,
			Margin:       pricing.Margin(l.SellingPrice, l.CostPrice),
		})
	}
	for i := range q.Payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(&q.Payments[i]))
	}
	return resp
}

func toTaskResponse(t *ds.Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Column:      t.Column,
		Position:    t.Position,
		Priority:    t.Priority,
		AssigneeID:  t.AssigneeID,
		DueDate:     t.DueDate,
	}
	if t.Assignee != nil {
		resp.AssigneeName = t.Assignee.FullName
	}
	return resp
}

func toDocumentResponse(d *ds.Document, url string) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		Category:    d.Category,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		URL:         url,
		CreatedAt:   d.CreatedAt,
	}
}

func toPhotoResponse(p *ds.Photo, url string) dto.PhotoResponse {
	return dto.PhotoResponse{
		ID:        p.ID,
		SurveyID:  p.SurveyID,
		FileName:  p.FileName,
		Caption:   p.Caption,
		Room:      p.Room,
		URL:       url,
		Size:      p.Size,
		CreatedAt: p.CreatedAt,
	}
}

func toDashboardResponse(s *repository.DashboardStats) dto.DashboardResponse {
	return dto.DashboardResponse{
		ActiveProjects:      s.ActiveProjects,
		OpenRFQs:            s.OpenRFQs,
		AwaitingQuotes:      s.AwaitingQuotes,
		OrdersByStatus:      s.OrdersByStatus,
		OpenOrdersValue:     s.OpenOrdersValue,
		OutstandingInvoices: s.OutstandingInvoices,
		OutstandingBalance:  s.OutstandingBalance,
		OverdueInvoices:     s.OverdueInvoices,
		TasksDueThisWeek:    s.TasksDueThisWeek,
		PaidThisMonth:       s.PaidThisMonth,
	}
}

func toCalendarResponse(events []repository.CalendarEvent) []dto.CalendarEventResponse {
	out := make([]dto.CalendarEventResponse, len(events))
	for i, e := range events {
		out[i] = dto.CalendarEventResponse{
			Date:    e.Date,
			Kind:    e.Kind,
			Title:   e.Title,
			RefID:   e.RefID,
			Status:  e.Status,
			Overdue: e.Overdue,
		}
	}
	return out
}
