package lending

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveLoan(t *testing.T, periodDays int) *Loan {
	t.Helper()
	loan, err := NewLoan(uuid.New(), uuid.New(), periodDays)
	require.NoError(t, err)
	loan.ClearDomainEvents()
	return loan
}

func TestNewLoan(t *testing.T) {
	t.Run("creates active loan with due date", func(t *testing.T) {
		bookID := uuid.New()
		borrowerID := uuid.New()

		loan, err := NewLoan(bookID, borrowerID, 14)
		require.NoError(t, err)
		assert.Equal(t, bookID, loan.BookID)
		assert.Equal(t, borrowerID, loan.BorrowerID)
		assert.Equal(t, LoanStatusActive, loan.Status)
		assert.Nil(t, loan.ReturnDate)
		assert.Equal(t, loan.BorrowDate.AddDate(0, 0, 14), loan.DueDate)

		events := loan.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeBookBorrowed, events[0].EventType())
	})

	t.Run("rejects non-positive period", func(t *testing.T) {
		_, err := NewLoan(uuid.New(), uuid.New(), 0)
		assert.Error(t, err)

		_, err = NewLoan(uuid.New(), uuid.New(), -7)
		assert.Error(t, err)
	})

	t.Run("rejects period beyond allowed variation", func(t *testing.T) {
		_, err := NewLoan(uuid.New(), uuid.New(), 43)
		assert.Error(t, err)

		_, err = NewLoan(uuid.New(), uuid.New(), 366)
		assert.Error(t, err)
	})

	t.Run("accepts period at bounds", func(t *testing.T) {
		_, err := NewLoan(uuid.New(), uuid.New(), 1)
		assert.NoError(t, err)

		_, err = NewLoan(uuid.New(), uuid.New(), 42)
		assert.NoError(t, err)
	})
}

func TestLoanReturn(t *testing.T) {
	t.Run("on-time return closes loan as returned", func(t *testing.T) {
		loan := newActiveLoan(t, 14)

		err := loan.Return()
		require.NoError(t, err)
		assert.Equal(t, LoanStatusReturned, loan.Status)
		require.NotNil(t, loan.ReturnDate)
		assert.True(t, loan.IsReturned())

		events := loan.GetDomainEvents()
		require.Len(t, events, 1)
		returned, ok := events[0].(*BookReturnedEvent)
		require.True(t, ok)
		assert.False(t, returned.Late)
	})

	t.Run("late return lands in overdue", func(t *testing.T) {
		loan := newActiveLoan(t, 14)

		err := loan.ReturnAt(loan.DueDate.AddDate(0, 0, 3))
		require.NoError(t, err)
		assert.Equal(t, LoanStatusOverdue, loan.Status)
		assert.True(t, loan.IsReturned())

		events := loan.GetDomainEvents()
		require.Len(t, events, 1)
		returned, ok := events[0].(*BookReturnedEvent)
		require.True(t, ok)
		assert.True(t, returned.Late)
	})

	t.Run("return exactly at due date is on time", func(t *testing.T) {
		loan := newActiveLoan(t, 14)

		err := loan.ReturnAt(loan.DueDate)
		require.NoError(t, err)
		assert.Equal(t, LoanStatusReturned, loan.Status)
	})

	t.Run("rejects return before borrow date", func(t *testing.T) {
		loan := newActiveLoan(t, 14)

		err := loan.ReturnAt(loan.BorrowDate.AddDate(0, 0, -1))
		assert.Error(t, err)
		assert.Equal(t, LoanStatusActive, loan.Status)
		assert.Nil(t, loan.ReturnDate)
	})

	t.Run("rejects double return", func(t *testing.T) {
		loan := newActiveLoan(t, 14)
		require.NoError(t, loan.Return())

		err := loan.Return()
		assert.Error(t, err)
	})
}

func TestLoanMarkAsOverdue(t *testing.T) {
	t.Run("flags active loan past due date", func(t *testing.T) {
		loan := newActiveLoan(t, 14)
		loan.DueDate = time.Now().UTC().AddDate(0, 0, -2)

		err := loan.MarkAsOverdue()
		require.NoError(t, err)
		assert.Equal(t, LoanStatusOverdue, loan.Status)

		events := loan.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeLoanMarkedOverdue, events[0].EventType())
	})

	t.Run("rejects loan not yet due", func(t *testing.T) {
		loan := newActiveLoan(t, 14)

		err := loan.MarkAsOverdue()
		assert.Error(t, err)
		assert.Equal(t, LoanStatusActive, loan.Status)
	})

	t.Run("rejects returned loan", func(t *testing.T) {
		loan := newActiveLoan(t, 14)
		require.NoError(t, loan.Return())

		err := loan.MarkAsOverdue()
		assert.Error(t, err)
	})
}

func TestLoanOverdueAccounting(t *testing.T) {
	t.Run("active loan within period owes nothing", func(t *testing.T) {
		loan := newActiveLoan(t, 14)
		assert.False(t, loan.IsOverdue())
		assert.Equal(t, 0, loan.DaysOverdue())
		assert.True(t, loan.OverdueFee(DefaultDailyOverdueFee).IsZero())
	})

	t.Run("active loan past due is overdue but owes nothing yet", func(t *testing.T) {
		loan := newActiveLoan(t, 14)
		loan.DueDate = time.Now().UTC().AddDate(0, 0, -3)

		assert.True(t, loan.IsOverdue())
		assert.Equal(t, 3, loan.DaysOverdue())
		// Fee only accrues once the loan is in the overdue state
		assert.True(t, loan.OverdueFee(DefaultDailyOverdueFee).IsZero())
	})

	t.Run("fee counts calendar days between due and return", func(t *testing.T) {
		loan := newActiveLoan(t, 14)
		require.NoError(t, loan.ReturnAt(loan.DueDate.AddDate(0, 0, 4)))
		require.Equal(t, LoanStatusOverdue, loan.Status)

		fee := loan.OverdueFee(DefaultDailyOverdueFee)
		assert.True(t, fee.Equal(decimal.NewFromInt(2)), "expected 2.00, got %s", fee)
	})

	t.Run("on-time returned loan owes nothing", func(t *testing.T) {
		loan := newActiveLoan(t, 14)
		require.NoError(t, loan.ReturnAt(loan.DueDate))

		assert.True(t, loan.OverdueFee(DefaultDailyOverdueFee).IsZero())
		assert.Equal(t, 0, loan.DaysOverdue())
	})
}

func TestValidateLoanPeriod(t *testing.T) {
	for _, days := range []int{1, 14, 42} {
		assert.NoError(t, ValidateLoanPeriod(days), "period %d should be accepted", days)
	}
	for _, days := range []int{0, -1, 43, 366} {
		assert.Error(t, ValidateLoanPeriod(days), "period %d should be rejected", days)
	}
}

func TestWithinStandardLoanPeriod(t *testing.T) {
	assert.True(t, WithinStandardLoanPeriod(14))
	assert.True(t, WithinStandardLoanPeriod(1))
	assert.True(t, WithinStandardLoanPeriod(28))
	assert.False(t, WithinStandardLoanPeriod(0))
	assert.False(t, WithinStandardLoanPeriod(29))
}
