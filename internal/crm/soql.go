package crm

import (
	"fmt"
	"time"
)

// Fixed-shape SOQL queries. Limits and dates are the only variable
// parts; everything else matches the dashboard's read patterns.

const opportunityFields = "Id, Name, Account.Name, Amount, StageName, Probability, CloseDate, " +
	"Owner.Name, Owner.Email, CreatedDate, LastModifiedDate"

func openOpportunitiesQuery(limit int) string {
	return fmt.Sprintf(
		"SELECT %s FROM Opportunity WHERE IsClosed = false ORDER BY LastModifiedDate DESC LIMIT %d",
		opportunityFields, limit)
}

func closedOpportunitiesQuery(since time.Time) string {
	return fmt.Sprintf(
		"SELECT %s FROM Opportunity WHERE IsClosed = true AND CloseDate >= %s ORDER BY CloseDate DESC LIMIT 100",
		opportunityFields, since.Format("2006-01-02"))
}

func accountsQuery(limit int) string {
	return fmt.Sprintf(
		"SELECT Id, Name, Type, Industry, AnnualRevenue, NumberOfEmployees FROM Account "+
			"WHERE Type != null ORDER BY LastModifiedDate DESC LIMIT %d", limit)
}

func usersQuery(limit int) string {
	return fmt.Sprintf(
		"SELECT Id, Name, Email, Title, IsActive FROM User "+
			"WHERE IsActive = true AND UserType = 'Standard' ORDER BY Name LIMIT %d", limit)
}
