package i18n

// catalog maps message keys to their English and Swahili text.
var catalog = map[string]map[string]string{
    // errors
    "unauthorized":         {English: "Authentication required", Swahili: "Uthibitisho unahitajika"},
    "forbidden":            {English: "You are not allowed to perform this action", Swahili: "Huruhusiwi kufanya kitendo hiki"},
    "invalid_body":         {English: "Invalid request body", Swahili: "Maudhui ya ombi si sahihi"},
    "validation_failed":    {English: "Some fields are invalid", Swahili: "Baadhi ya sehemu si sahihi"},
    "invalid_id":           {English: "Invalid identifier", Swahili: "Kitambulisho si sahihi"},
    "invalid_query":        {English: "Invalid search parameters", Swahili: "Vigezo vya utafutaji si sahihi"},
    "database_error":       {English: "A database error occurred", Swahili: "Hitilafu ya hifadhidata imetokea"},
    "internal_error":       {English: "Something went wrong", Swahili: "Kuna tatizo limetokea"},
    "email_exists":         {English: "Email already registered", Swahili: "Barua pepe tayari imesajiliwa"},
    "invalid_role":         {English: "Role is not allowed", Swahili: "Jukumu hili haliruhusiwi"},
    "invalid_credentials":  {English: "Invalid email or password", Swahili: "Barua pepe au nenosiri si sahihi"},
    "account_disabled":     {English: "This account has been disabled", Swahili: "Akaunti hii imezimwa"},
    "refresh_required":     {English: "refresh_token is required", Swahili: "refresh_token inahitajika"},
    "invalid_refresh":      {English: "Invalid or expired refresh token", Swahili: "Tokeni ya kuonyesha upya si sahihi au imeisha muda"},
    "logout_required":      {English: "Provide an Authorization header or refresh_token", Swahili: "Weka kichwa cha Authorization au refresh_token"},
    "user_not_found":       {English: "User not found", Swahili: "Mtumiaji hakupatikana"},
    "property_not_found":   {English: "Property not found", Swahili: "Nyumba haikupatikana"},
    "property_unavailable": {English: "This property is not available for booking", Swahili: "Nyumba hii haipatikani kwa kukodi"},
    "image_not_found":      {English: "Image not found", Swahili: "Picha haikupatikana"},
    "image_limit":          {English: "This property already has the maximum number of images", Swahili: "Nyumba hii tayari ina idadi ya juu ya picha"},
    "image_too_large":      {English: "Image is too large", Swahili: "Picha ni kubwa mno"},
    "unsupported_image":    {English: "Only JPEG, PNG or WebP images are allowed", Swahili: "Picha za JPEG, PNG au WebP pekee zinaruhusiwa"},
    "file_required":        {English: "An image file is required", Swahili: "Faili ya picha inahitajika"},
    "storage_unavailable":  {English: "Image storage is unavailable", Swahili: "Hifadhi ya picha haipatikani"},
    "inquiry_not_found":    {English: "Inquiry not found", Swahili: "Ulizo halikupatikana"},
    "booking_not_found":    {English: "Booking request not found", Swahili: "Ombi la kukodi halikupatikana"},
    "booking_exists":       {English: "You already have a pending request for this property", Swahili: "Tayari una ombi linalosubiri kwa nyumba hii"},
    "booking_not_approved": {English: "Payments can only be recorded for approved bookings", Swahili: "Malipo yanaweza kurekodiwa kwa maombi yaliyoidhinishwa tu"},
    "move_in_past":         {English: "Move-in date cannot be in the past", Swahili: "Tarehe ya kuhamia haiwezi kuwa iliyopita"},
    "invalid_transition":   {English: "This action is not allowed in the current state", Swahili: "Kitendo hiki hakiruhusiwi katika hali ya sasa"},
    "payment_not_found":    {English: "Payment not found", Swahili: "Malipo hayakupatikana"},

    "notification_not_found": {English: "Notification not found", Swahili: "Taarifa haikupatikana"},
    "not_found":              {English: "Resource not found", Swahili: "Hakikupatikana"},
    "method_not_allowed":     {English: "Method not allowed", Swahili: "Njia hii hairuhusiwi"},
    "payload_too_large":      {English: "Request body is too large", Swahili: "Maudhui ya ombi ni makubwa mno"},
    "too_many_requests":      {English: "Too many requests, try again shortly", Swahili: "Maombi mengi mno, jaribu tena baadaye"},
    "weak_password":          {English: "Password must be at least 8 characters with a letter and a digit", Swahili: "Nenosiri liwe na herufi 8 au zaidi, likiwemo herufi na tarakimu"},
    "payment_exists":         {English: "This payment reference was already recorded", Swahili: "Kumbukumbu hii ya malipo tayari imerekodiwa"},
    "invalid_status":         {English: "Unknown status value", Swahili: "Hali hii haijulikani"},
    "cannot_modify_self":     {English: "You cannot change your own role or status", Swahili: "Huwezi kubadilisha jukumu au hali yako mwenyewe"},

    // field validation
    "validate.required": {English: "This field is required", Swahili: "Sehemu hii inahitajika"},
    "validate.email":    {English: "Invalid email format", Swahili: "Muundo wa barua pepe si sahihi"},
    "validate.min":      {English: "Must be at least %s", Swahili: "Lazima iwe angalau %s"},
    "validate.max":      {English: "Must be at most %s", Swahili: "Isizidi %s"},
    "validate.gte":      {English: "Must be greater than or equal to %s", Swahili: "Lazima iwe kubwa au sawa na %s"},
    "validate.lte":      {English: "Must be less than or equal to %s", Swahili: "Lazima iwe ndogo au sawa na %s"},
    "validate.oneof":    {English: "Must be one of: %s", Swahili: "Lazima iwe mojawapo ya: %s"},
    "validate.tzphone":  {English: "Use a Tanzanian mobile number such as +255712345678 or 0712345678", Swahili: "Tumia namba ya simu ya Tanzania kama +255712345678 au 0712345678"},
    "validate.invalid":  {English: "Invalid value", Swahili: "Thamani si sahihi"},

    // notifications
    "notify.inquiry_created.title":   {English: "New inquiry", Swahili: "Ulizo jipya"},
    "notify.inquiry_created.body":    {English: "%s sent an inquiry about \"%s\".", Swahili: "%s ametuma ulizo kuhusu \"%s\"."},
    "notify.inquiry_responded.title": {English: "Your inquiry was answered", Swahili: "Ulizo lako limejibiwa"},
    "notify.inquiry_responded.body":  {English: "The owner of \"%s\" replied to your inquiry.", Swahili: "Mmiliki wa \"%s\" amejibu ulizo lako."},
    "notify.booking_requested.title": {English: "New booking request", Swahili: "Ombi jipya la kukodi"},
    "notify.booking_requested.body":  {English: "%s wants to rent \"%s\" from %s.", Swahili: "%s anataka kukodi \"%s\" kuanzia %s."},
    "notify.booking_approved.title":  {English: "Booking approved", Swahili: "Ombi limeidhinishwa"},
    "notify.booking_approved.body":   {English: "Your request for \"%s\" was approved.", Swahili: "Ombi lako la \"%s\" limeidhinishwa."},
    "notify.booking_rejected.title":  {English: "Booking declined", Swahili: "Ombi limekataliwa"},
    "notify.booking_rejected.body":   {English: "Your request for \"%s\" was declined.", Swahili: "Ombi lako la \"%s\" limekataliwa."},
    "notify.booking_cancelled.title": {English: "Booking cancelled", Swahili: "Ombi limeghairiwa"},
    "notify.booking_cancelled.body":  {English: "%s cancelled the request for \"%s\".", Swahili: "%s ameghairi ombi la \"%s\"."},
    "notify.payment_recorded.title":  {English: "Payment recorded", Swahili: "Malipo yamerekodiwa"},
    "notify.payment_recorded.body":   {English: "%s recorded a payment of %s for \"%s\".", Swahili: "%s amerekodi malipo ya %s kwa \"%s\"."},
    "notify.payment_confirmed.title": {English: "Payment confirmed", Swahili: "Malipo yamethibitishwa"},
    "notify.payment_confirmed.body":  {English: "Your payment of %s for \"%s\" was confirmed.", Swahili: "Malipo yako ya %s kwa \"%s\" yamethibitishwa."},
    "notify.payment_rejected.title":  {English: "Payment rejected", Swahili: "Malipo yamekataliwa"},
    "notify.payment_rejected.body":   {English: "Your payment of %s for \"%s\" could not be verified.", Swahili: "Malipo yako ya %s kwa \"%s\" hayakuweza kuthibitishwa."},
}
